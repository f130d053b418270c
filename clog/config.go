package clog

import (
	"fmt"
	"strings"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config 单输出 Logger 的配置，用于 CLI 和组件自身的诊断日志
//
// 完整的多 sink 管道请使用 Build 激活 logplan.Plan。
//
// 支持的配置项：
//
//	Level: 日志级别 (verbose|debug|info|warn|error|fatal)
//	Format: 输出格式 (json|console)
//	Output: 输出目标 (stdout|stderr|文件路径)
//	EnableColor: 是否启用彩色输出（仅 console 格式）
//	AddSource: 是否显示调用位置信息
//	SourceRoot: 源代码路径前缀，用于裁剪显示的文件路径
//
// 示例：
//
//	config := &clog.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "/var/log/app.log",
//	    AddSource: true,
//	}
type Config struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Format      string `json:"format" yaml:"format" mapstructure:"format"`
	Output      string `json:"output" yaml:"output" mapstructure:"output"`
	EnableColor bool   `json:"enableColor" yaml:"enableColor" mapstructure:"enableColor"`
	AddSource   bool   `json:"addSource" yaml:"addSource" mapstructure:"addSource"`
	SourceRoot  string `json:"sourceRoot" yaml:"sourceRoot" mapstructure:"sourceRoot"`
}

// NewDevDefaultConfig 开发环境默认配置：彩色 console 输出，debug 级别
func NewDevDefaultConfig() *Config {
	return &Config{
		Level:       "debug",
		Format:      "console",
		Output:      "stdout",
		EnableColor: true,
		AddSource:   true,
	}
}

// NewProdDefaultConfig 生产环境默认配置：json 输出，info 级别
func NewProdDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}
}

// validate 为空值设置默认值并检查 Level 和 Format
func (c *Config) validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}

	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	format := strings.ToLower(c.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("invalid format: %s, must be json or console", c.Format)
	}
	return nil
}
