package remote

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option 组件初始化选项函数
type Option func(*options)

type options struct {
	client     *http.Client
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// WithHTTPClient 设置发送使用的 HTTP 客户端
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithLogger 设置 sink 自身的诊断日志
//
// 诊断日志不能写回远程 sink 本身，通常指向 stderr。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer 把发送计数注册到 Prometheus
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = &http.Client{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
