package clog

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ceyewan/logkit/logplan"
	"github.com/prometheus/client_golang/prometheus"
)

// ContextField 定义从 Context 中提取字段的规则
type ContextField struct {
	Key       any    // Context 中存储的键
	FieldName string // 日志中的字段名
}

// RemoteConfig 远程 sink 的发送参数，零值字段使用默认值
type RemoteConfig struct {
	BatchSize     int           // 单批最大事件数，默认 100
	FlushInterval time.Duration // 发送间隔，默认 1s
	QueueSize     int           // 队列长度，默认 10000
	Timeout       time.Duration // 单次请求超时，默认 10s
	MaxRetries    int           // 最大重试次数，默认 3，小于 0 表示不重试
	Encoding      string        // json | msgpack
	RateLimit     float64       // 每秒最多发送的批次数，0 表示不限制
}

// Option 函数式选项，用于配置 Logger 实例
type Option func(*options)

// options 内部选项结构
type options struct {
	namespaceParts        []string
	contextFields         []ContextField
	enableTraceExtraction bool

	// Build 使用
	overrideSource logplan.SectionReader
	consoleWriter  io.Writer
	consoleColor   *bool
	addSource      bool
	remote         RemoteConfig
	httpClient     *http.Client
	registerer     prometheus.Registerer
	diagnostics    *slog.Logger

	buffer *bytes.Buffer // 测试用缓冲区
	exit   func(code int)
}

// WithNamespace 设置日志命名空间，支持多级命名空间
//
// 命名空间会以 "." 连接，作为日志中的 namespace 字段，也用于匹配级别覆盖。
//
// 示例：
//
//	// 设置为 "order-service.api"
//	clog.WithNamespace("order-service", "api")
func WithNamespace(parts ...string) Option {
	return func(o *options) {
		o.namespaceParts = append(o.namespaceParts, parts...)
	}
}

// WithContextField 添加自定义的 Context 字段提取规则
//
// 示例：
//
//	clog.WithContextField("trace-id", "trace_id")
func WithContextField(key any, fieldName string) Option {
	return func(o *options) {
		o.contextFields = append(o.contextFields, ContextField{
			Key:       key,
			FieldName: fieldName,
		})
	}
}

// WithStandardContext 自动提取 trace_id、user_id、request_id 三个常用字段
func WithStandardContext() Option {
	return func(o *options) {
		o.contextFields = append(o.contextFields,
			ContextField{Key: "trace_id", FieldName: "trace_id"},
			ContextField{Key: "user_id", FieldName: "user_id"},
			ContextField{Key: "request_id", FieldName: "request_id"},
		)
	}
}

// WithTraceContext 开启 OpenTelemetry TraceID 自动提取
//
// 启用后，会自动从 Context 中提取 OTel 的 TraceID 和 SpanID。
func WithTraceContext() Option {
	return func(o *options) {
		o.enableTraceExtraction = true
	}
}

// WithOverrideSource 在激活计划前叠加配置中的 Logging 节
//
// Logging:MinimumLevel 覆盖全局最低级别，Logging:Override:<namespace> 覆盖单个命名空间的级别。
// 配置优先于代码中的设置。
func WithOverrideSource(src logplan.SectionReader) Option {
	return func(o *options) {
		o.overrideSource = src
	}
}

// WithConsoleWriter 替换 console sink 的输出目标，默认 os.Stdout
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.consoleWriter = w
	}
}

// WithConsoleColor 强制开启或关闭 console 彩色输出，默认仅在终端中开启
func WithConsoleColor(enabled bool) Option {
	return func(o *options) {
		o.consoleColor = &enabled
	}
}

// WithSource 在输出中包含调用位置
func WithSource() Option {
	return func(o *options) {
		o.addSource = true
	}
}

// WithRemoteConfig 调整远程 sink 的发送参数
func WithRemoteConfig(cfg RemoteConfig) Option {
	return func(o *options) {
		o.remote = cfg
	}
}

// WithHTTPClient 设置远程 sink 使用的 HTTP 客户端
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithMetricsRegisterer 把远程 sink 的发送计数注册到 Prometheus
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithDiagnostics 设置管道自身的诊断日志，默认输出 Warn 以上到 stderr
func WithDiagnostics(logger *slog.Logger) Option {
	return func(o *options) {
		o.diagnostics = logger
	}
}

// WithExitFunc 替换 Fatal 之后调用的退出函数，默认 os.Exit
func WithExitFunc(exit func(code int)) Option {
	return func(o *options) {
		o.exit = exit
	}
}

// applyOptions 应用所有选项并返回配置（内部使用）
func applyOptions(opts ...Option) *options {
	o := &options{
		namespaceParts: []string{},
		contextFields:  []ContextField{},
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.exit == nil {
		o.exit = os.Exit
	}
	if o.diagnostics == nil {
		o.diagnostics = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return o
}
