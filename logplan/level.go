package logplan

import (
	"fmt"
	"strings"
)

// Level 日志级别，按严重程度递增
//
//	VerboseLevel:     最详细的跟踪信息
//	DebugLevel:       调试信息
//	InformationLevel: 正常业务流程
//	WarningLevel:     潜在问题
//	ErrorLevel:       可恢复的错误
//	FatalLevel:       致命错误
type Level int

const (
	VerboseLevel Level = iota
	DebugLevel
	InformationLevel
	WarningLevel
	ErrorLevel
	FatalLevel
)

// levelNames 与 Level 常量一一对应
var levelNames = [...]string{
	VerboseLevel:     "Verbose",
	DebugLevel:       "Debug",
	InformationLevel: "Information",
	WarningLevel:     "Warning",
	ErrorLevel:       "Error",
	FatalLevel:       "Fatal",
}

// String 返回级别的规范名称，如 "Information"
func (l Level) String() string {
	if l >= VerboseLevel && l <= FatalLevel {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel 将字符串解析为 Level
//
// 解析是全函数：忽略首尾空白、不区分大小写，无法识别的输入一律返回 InformationLevel。
// 配置里的笔误只会让日志变得不那么详细，而不会让应用启动失败。
//
//	logplan.ParseLevel("DEBUG")    // DebugLevel
//	logplan.ParseLevel("Nonsense") // InformationLevel
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose":
		return VerboseLevel
	case "debug":
		return DebugLevel
	case "information":
		return InformationLevel
	case "warning":
		return WarningLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InformationLevel
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，与 ParseLevel 一样不会失败
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))
	return nil
}
