package config

import (
	"context"
	"strings"

	"github.com/ceyewan/logkit/clog"
)

// Config 配置加载器参数
type Config struct {
	Name      string   // 配置文件名称（不含扩展名），默认 "config"
	Paths     []string // 配置文件搜索路径，默认 [".", "./config"]
	FileType  string   // 配置文件类型 (yaml, json, toml)，默认 "yaml"
	EnvPrefix string   // 环境变量前缀，为空时不要求前缀

	logger clog.Logger
}

// Option 配置选项模式
type Option func(*Config)

// validate 设置默认值
func (c *Config) validate() error {
	if c.Name == "" {
		c.Name = "config"
	}
	if c.Paths == nil {
		c.Paths = []string{".", "./config"}
	}
	if c.FileType == "" {
		c.FileType = "yaml"
	}
	c.EnvPrefix = strings.TrimSpace(c.EnvPrefix)
	if c.logger == nil {
		c.logger = clog.Discard()
	}
	return nil
}

// defaultConfig 返回默认参数
func defaultConfig() *Config {
	c := &Config{}
	_ = c.validate()
	return c
}

// WithConfigName 设置配置文件名称（不带扩展名）
func WithConfigName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithConfigPath 添加配置文件搜索路径
func WithConfigPath(path string) Option {
	return func(c *Config) {
		c.Paths = append(c.Paths, path)
	}
}

// WithConfigPaths 设置配置文件搜索路径（覆盖默认值）
func WithConfigPaths(paths ...string) Option {
	return func(c *Config) {
		c.Paths = paths
	}
}

// WithConfigType 设置配置文件类型 (yaml, json, etc.)
func WithConfigType(typ string) Option {
	return func(c *Config) {
		c.FileType = typ
	}
}

// WithEnvPrefix 设置环境变量前缀
//
// 设置为 "APP" 后只读取 APP__BetterStack__SourceToken 形式的变量。
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.EnvPrefix = prefix
	}
}

// WithLogger 设置加载器自身的诊断日志
func WithLogger(logger clog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// New 创建配置加载器，尚未加载任何数据
func New(opts ...Option) (Loader, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newLoader(cfg), nil
}

// MustLoad 创建并加载配置，失败时 panic。仅用于初始化阶段。
func MustLoad(opts ...Option) Loader {
	l, err := New(opts...)
	if err != nil {
		panic(err)
	}
	if err := l.Load(context.Background()); err != nil {
		panic(err)
	}
	return l
}
