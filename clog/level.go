package clog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ceyewan/logkit/logplan"
)

// Level 日志级别类型，与 logplan.Level 相同
//
// 支持 6 个级别，按严重程度递增：
//
//	VerboseLevel: 最详细的跟踪信息
//	DebugLevel:   调试信息，通常只在开发环境使用
//	InfoLevel:    一般信息，记录正常的业务流程
//	WarnLevel:    警告信息，表示潜在问题
//	ErrorLevel:   错误信息，表示程序出错但可恢复
//	FatalLevel:   致命错误，程序会退出
type Level = logplan.Level

const (
	VerboseLevel = logplan.VerboseLevel     // 跟踪级别
	DebugLevel   = logplan.DebugLevel       // 调试级别
	InfoLevel    = logplan.InformationLevel // 信息级别
	WarnLevel    = logplan.WarningLevel     // 警告级别
	ErrorLevel   = logplan.ErrorLevel       // 错误级别
	FatalLevel   = logplan.FatalLevel       // 致命级别
)

// ParseLevel 将字符串解析为 Level
//
// 支持的字符串（不区分大小写）：
//
//	"verbose", "debug", "info", "information", "warn", "warning", "error", "fatal"
//
// 与 logplan.ParseLevel 不同，无法识别时返回错误，供显式配置的 Config 校验使用。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "trace":
		return VerboseLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info", "information":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %s", s)
	}
}

// toSlogLevel 将 Level 映射为 slog.Level
//
// slog 没有 Verbose 和 Fatal，分别使用 Debug-4 和 Error+4。
func toSlogLevel(level Level) slog.Level {
	switch level {
	case VerboseLevel:
		return slog.LevelDebug - 4
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	case FatalLevel:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// levelLabel 输出中显示的级别名称
func levelLabel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "VERBOSE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	case level < slog.LevelError+4:
		return "ERROR"
	default:
		return "FATAL"
	}
}
