package clog

import "github.com/ceyewan/logkit/xerrors"

// New 创建一个单输出的 Logger 实例
//
// config - 日志配置，如果为 nil 会使用开发环境默认配置
// opts   - 函数式选项列表，用于命名空间、Context 字段等配置
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = NewDevDefaultConfig()
	}

	if err := config.validate(); err != nil {
		return nil, xerrors.Wrap(err, "invalid config")
	}

	return newLogger(config, applyOptions(opts...))
}
