package logplan

import (
	"fmt"
	"maps"
	"strings"
)

// SinkKind sink 类型
type SinkKind int

const (
	ConsoleKind SinkKind = iota
	FileKind
	RemoteKind
)

func (k SinkKind) String() string {
	switch k {
	case ConsoleKind:
		return "Console"
	case FileKind:
		return "File"
	case RemoteKind:
		return "Remote"
	default:
		return fmt.Sprintf("SinkKind(%d)", int(k))
	}
}

// Sink sink 描述符，只携带该 sink 激活时需要的参数
//
// 实现是封闭的：ConsoleSink、FileSink、RemoteSink。
type Sink interface {
	Kind() SinkKind
	sink()
}

// ConsoleSink 控制台输出
type ConsoleSink struct{}

// FileSink 滚动文件输出
type FileSink struct {
	Path              string
	RollingInterval   RollingInterval
	RetainedFileCount int
	FileSizeLimitMB   int
}

// RemoteSink 远程 HTTP 接入
type RemoteSink struct {
	Token    string
	Endpoint string
}

func (ConsoleSink) Kind() SinkKind { return ConsoleKind }
func (FileSink) Kind() SinkKind    { return FileKind }
func (RemoteSink) Kind() SinkKind  { return RemoteKind }

func (ConsoleSink) sink() {}
func (FileSink) sink()    {}
func (RemoteSink) sink()  {}

// MaskedToken 返回脱敏后的 token，仅保留末尾 4 位
func (s RemoteSink) MaskedToken() string {
	if len(s.Token) <= 4 {
		return strings.Repeat("*", len(s.Token))
	}
	return strings.Repeat("*", len(s.Token)-4) + s.Token[len(s.Token)-4:]
}

// Plan 解析完成的日志管线描述，生成后不再修改
//
// Plan 不引用任何 Options 中的切片或 map，调用方修改 Options 不会影响已生成的 Plan。
type Plan struct {
	// MinimumLevel 全局最小级别
	MinimumLevel Level

	// Sinks 按 Console、File、Remote 的固定顺序排列，仅包含启用的 sink
	Sinks []Sink

	// LevelOverrides 命名空间前缀 -> 最小级别
	LevelOverrides map[string]Level

	// Enrichment 附加到每条日志的静态字段
	Enrichment map[string]string
}

// Console 返回控制台 sink 描述符
func (p *Plan) Console() (ConsoleSink, bool) {
	for _, s := range p.Sinks {
		if c, ok := s.(ConsoleSink); ok {
			return c, true
		}
	}
	return ConsoleSink{}, false
}

// File 返回文件 sink 描述符
func (p *Plan) File() (FileSink, bool) {
	for _, s := range p.Sinks {
		if f, ok := s.(FileSink); ok {
			return f, true
		}
	}
	return FileSink{}, false
}

// Remote 返回远程 sink 描述符
func (p *Plan) Remote() (RemoteSink, bool) {
	for _, s := range p.Sinks {
		if r, ok := s.(RemoteSink); ok {
			return r, true
		}
	}
	return RemoteSink{}, false
}

// Clone 返回深拷贝
func (p *Plan) Clone() *Plan {
	return &Plan{
		MinimumLevel:   p.MinimumLevel,
		Sinks:          append([]Sink(nil), p.Sinks...),
		LevelOverrides: maps.Clone(p.LevelOverrides),
		Enrichment:     maps.Clone(p.Enrichment),
	}
}
