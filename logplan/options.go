package logplan

import "strings"

const (
	// DefaultLogFilePath 文件 sink 的默认路径模板
	DefaultLogFilePath = "logs/log.txt"

	// DefaultMinimumLevel 默认最小级别名称
	DefaultMinimumLevel = "Information"

	// DefaultRetainedFileCount 默认保留的历史周期文件数
	DefaultRetainedFileCount = 31

	// DefaultFileSizeLimitMB 单个日志文件的默认大小上限
	DefaultFileSizeLimitMB = 1024

	// DefaultRemoteEndpoint 远程日志接入的默认地址
	DefaultRemoteEndpoint = "https://in.logs.betterstack.com"

	// RemoteSectionKey 远程 sink 凭据所在的配置节
	//
	// 环境变量按双下划线分层覆盖，例如 BetterStack__SourceToken。
	RemoteSectionKey = "BetterStack"

	// ApplicationProperty 应用名称的富化字段名
	ApplicationProperty = "Application"
)

// Options 日志配置请求，由 DefaultOptions 预置默认值后交给用户回调修改
//
// 用户回调阶段不做任何校验，不合法的值在解析阶段降级处理。
type Options struct {
	// ApplicationName 非空白时作为静态富化字段 Application 附加到每条日志
	ApplicationName string `json:"applicationName" yaml:"applicationName" mapstructure:"applicationName"`

	// LogFilePath 文件 sink 的路径模板，周期戳插入到扩展名之前
	LogFilePath string `json:"logFilePath" yaml:"logFilePath" mapstructure:"logFilePath"`

	// RollingInterval 文件滚动周期
	RollingInterval RollingInterval `json:"rollingInterval" yaml:"rollingInterval" mapstructure:"rollingInterval"`

	// MinimumLevel 全局最小级别名称，不区分大小写
	MinimumLevel string `json:"minimumLevel" yaml:"minimumLevel" mapstructure:"minimumLevel"`

	EnableConsole bool `json:"enableConsole" yaml:"enableConsole" mapstructure:"enableConsole"`
	EnableFile    bool `json:"enableFile" yaml:"enableFile" mapstructure:"enableFile"`

	// OverrideToWarning 命名空间前缀列表，匹配的来源最小级别强制为 Warning
	OverrideToWarning []string `json:"overrideToWarning" yaml:"overrideToWarning" mapstructure:"overrideToWarning"`

	// RetainedFileCount 保留的历史周期文件数，<=0 表示不清理
	RetainedFileCount int `json:"retainedFileCount" yaml:"retainedFileCount" mapstructure:"retainedFileCount"`

	// FileSizeLimitMB 单个文件的大小上限，超过后在同一周期内按大小滚动
	FileSizeLimitMB int `json:"fileSizeLimitMB" yaml:"fileSizeLimitMB" mapstructure:"fileSizeLimitMB"`
}

// DefaultOptions 返回一份新分配的默认配置
func DefaultOptions() *Options {
	return &Options{
		LogFilePath:       DefaultLogFilePath,
		RollingInterval:   RollingDay,
		MinimumLevel:      DefaultMinimumLevel,
		EnableConsole:     true,
		EnableFile:        true,
		OverrideToWarning: []string{"Microsoft", "System"},
		RetainedFileCount: DefaultRetainedFileCount,
		FileSizeLimitMB:   DefaultFileSizeLimitMB,
	}
}

// RemoteOptions 远程 sink 的凭据，从 RemoteSectionKey 配置节绑定
//
// 没有单独的启用开关：是否启用完全由 SourceToken 推导，见 Enabled。
type RemoteOptions struct {
	SourceToken string `json:"sourceToken" yaml:"sourceToken" mapstructure:"sourceToken"`
	Endpoint    string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
}

// DefaultRemoteOptions 返回远程 sink 的默认配置（未启用）
func DefaultRemoteOptions() RemoteOptions {
	return RemoteOptions{Endpoint: DefaultRemoteEndpoint}
}

// Enabled 当且仅当 SourceToken 去除空白后非空时返回 true
func (o RemoteOptions) Enabled() bool {
	return strings.TrimSpace(o.SourceToken) != ""
}
