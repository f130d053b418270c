package host

import (
	"github.com/ceyewan/logkit/clog"
	"github.com/ceyewan/logkit/config"
)

// Option 组件初始化选项函数
type Option func(*options)

type options struct {
	loader     config.Loader
	configOpts []config.Option
	buildOpts  []clog.Option
}

// WithLoader 使用已加载的配置，Build 不会再调用 Load
func WithLoader(loader config.Loader) Option {
	return func(o *options) {
		o.loader = loader
	}
}

// WithConfigOptions 设置 Build 创建配置加载器时使用的选项
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *options) {
		o.configOpts = append(o.configOpts, opts...)
	}
}

// WithBuildOptions 设置激活日志计划时传给 clog.Build 的选项
func WithBuildOptions(opts ...clog.Option) Option {
	return func(o *options) {
		o.buildOpts = append(o.buildOpts, opts...)
	}
}
