package clog

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/ceyewan/logkit/xerrors"
)

// Field 是 slog.Attr 的类型别名
type Field = slog.Attr

// String 创建字符串字段
func String(k, v string) Field { return slog.String(k, v) }

// Int 创建整数字段
func Int(k string, v int) Field { return slog.Int(k, v) }

// Int64 创建64位整数字段
func Int64(k string, v int64) Field { return slog.Int64(k, v) }

// Float64 创建浮点数字段
func Float64(k string, v float64) Field { return slog.Float64(k, v) }

// Bool 创建布尔字段
func Bool(k string, v bool) Field { return slog.Bool(k, v) }

// Time 创建时间字段
func Time(k string, v time.Time) Field { return slog.Time(k, v) }

// Duration 创建时间长度字段
func Duration(k string, v time.Duration) Field { return slog.Duration(k, v) }

// Any 创建任意类型字段
func Any(k string, v any) Field { return slog.Any(k, v) }

// Group 创建分组字段
func Group(k string, fields ...Field) Field {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return slog.Group(k, args...)
}

// Error 只输出错误消息（不含错误码前缀），err 为 nil 时返回空字段（会被丢弃）
//
//	logger.Error("Operation failed", clog.Error(err))
//	// 输出：err_msg="file not found"
func Error(err error) Field {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("err_msg", xerrors.Message(err))
}

// ErrorWithCode 包含错误码的错误字段：error={msg=..., code=...}
//
// code 为空时使用 xerrors.WithCode 附加在错误链上的错误码。
func ErrorWithCode(err error, code string) Field {
	if code == "" {
		code = xerrors.GetCode(err)
	}
	if err == nil {
		return slog.Group("error", slog.String("code", code))
	}
	return slog.Group("error",
		slog.String("msg", xerrors.Message(err)),
		slog.String("code", code),
	)
}

// ErrorWithStack 包含错误消息、类型和调用栈，生产环境中谨慎使用
func ErrorWithStack(err error) Field {
	if err == nil {
		return slog.Attr{}
	}
	attrs := []any{
		slog.String("msg", xerrors.Message(err)),
		slog.String("type", fmt.Sprintf("%T", err)),
	}
	// 跳过 runtime.Callers、getStackTrace 和 ErrorWithStack
	if stack := getStackTrace(3); stack != "" {
		attrs = append(attrs, slog.String("stack", stack))
	}
	return slog.Group("error", attrs...)
}

// getStackTrace 获取当前调用栈信息（内部使用）
func getStackTrace(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var builder strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return builder.String()
}
