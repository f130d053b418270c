// Package clog 是 logkit 的日志引擎，基于 slog 实现。
//
// 两种创建方式：
//   - New：单输出 Logger，用于 CLI 和组件自身的诊断日志
//   - Build：激活 logplan.Plan，把日志分发到 console、滚动文件和远程接入端
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 层级命名空间，按命名空间前缀覆盖最低级别
//   - 运行时通过 SetLevel 调整全局级别
//   - 从 Context 中提取字段和 OpenTelemetry TraceID
//
// 基本使用：
//
//	plan := logplan.Resolve(func(o *logplan.Options) {
//	    o.ApplicationName = "Orders"
//	}, src)
//	logger, err := clog.Build(plan, clog.WithOverrideSource(src))
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//	logger.Info("Hello, World!", clog.String("key", "value"))
//
// 带命名空间的日志：
//
//	db := logger.WithNamespace("Microsoft", "EntityFramework")
//	db.Info("query executed") // 受 Microsoft 的级别覆盖约束
package clog

import "context"

// Logger 日志接口，提供结构化日志记录功能
//
// 支持六个日志级别：Verbose、Debug、Info、Warn、Error、Fatal
// 每个级别都有带 Context 和不带 Context 的版本
//
// 基本使用：
//
//	logger.Info("Hello, World", clog.String("key", "value"))
//
// 带 Context 的使用：
//
//	logger.InfoContext(ctx, "Request processed")
//	// 会自动从 Context 中提取配置的字段
//
// 创建子 Logger：
//
//	childLogger := logger.With(clog.String("module", "auth"))
//	namespacedLogger := logger.WithNamespace("auth", "login")
type Logger interface {
	// 基础日志级别方法
	Verbose(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// 带 Context 的日志级别方法，用于自动提取 Context 字段
	//
	// 示例：
	//   ctx := context.WithValue(context.Background(), "trace_id", "abc123")
	//   logger.InfoContext(ctx, "Request processed")
	//   // 日志中会包含提取的 Context 字段
	VerboseContext(ctx context.Context, msg string, fields ...Field)
	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)
	FatalContext(ctx context.Context, msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger
	//
	// 预设的字段会出现在所有日志中。
	//
	// 示例：
	//   logger := logger.With(clog.String("user_id", "12345"))
	//   logger.Info("User logged in")
	//   // 输出：user_id=12345 msg="User logged in"
	With(fields ...Field) Logger

	// WithNamespace 创建一个扩展命名空间的子 Logger
	//
	// 命名空间会追加到现有的命名空间后面。
	//
	// 示例：
	//   logger := clog.WithNamespace("service", "api")
	//   handlerLogger := logger.WithNamespace("users")
	//   // 最终命名空间为 "service.api.users"
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整全局最低级别
	//
	// 对同一个 Build 或 New 派生出的所有 Logger 生效，命名空间覆盖不受影响。
	//
	// 示例：
	//   logger.SetLevel(clog.DebugLevel)
	SetLevel(level Level) error

	// Flush 等待远程 sink 发送已入队的日志
	Flush()

	// Close 发送剩余日志，关闭文件并释放文件锁
	//
	// 派生出的子 Logger 共享同一组资源，关闭任意一个即全部关闭。可重复调用。
	Close() error
}
