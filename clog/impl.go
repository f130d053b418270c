package clog

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/ceyewan/logkit/xerrors"
)

// loggerImpl 是 Logger 接口的具体实现
//
// handler 不做级别过滤；级别由 router 在创建记录前判断，避免被过滤的日志产生任何开销。
type loggerImpl struct {
	handler   slog.Handler
	router    *levelRouter
	pipe      *pipeline
	options   *options
	namespace string
	baseAttrs []slog.Attr
}

// newLogger 创建单输出 Logger（内部使用）
func newLogger(config *Config, options *options) (Logger, error) {
	pipe := &pipeline{}
	handler, err := newHandler(config, options, pipe)
	if err != nil {
		return nil, err
	}

	level, _ := ParseLevel(config.Level)
	return &loggerImpl{
		handler:   handler,
		router:    newLevelRouter(level, nil),
		pipe:      pipe,
		options:   options,
		namespace: getNamespaceString(options),
	}, nil
}

func (l *loggerImpl) Verbose(msg string, fields ...Field) {
	l.log(context.Background(), VerboseLevel, msg, fields...)
}

func (l *loggerImpl) Debug(msg string, fields ...Field) {
	l.log(context.Background(), DebugLevel, msg, fields...)
}

func (l *loggerImpl) Info(msg string, fields ...Field) {
	l.log(context.Background(), InfoLevel, msg, fields...)
}

func (l *loggerImpl) Warn(msg string, fields ...Field) {
	l.log(context.Background(), WarnLevel, msg, fields...)
}

func (l *loggerImpl) Error(msg string, fields ...Field) {
	l.log(context.Background(), ErrorLevel, msg, fields...)
}

func (l *loggerImpl) Fatal(msg string, fields ...Field) {
	l.log(context.Background(), FatalLevel, msg, fields...)
}

func (l *loggerImpl) VerboseContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, VerboseLevel, msg, fields...)
}

func (l *loggerImpl) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, DebugLevel, msg, fields...)
}

func (l *loggerImpl) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, InfoLevel, msg, fields...)
}

func (l *loggerImpl) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, WarnLevel, msg, fields...)
}

func (l *loggerImpl) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, ErrorLevel, msg, fields...)
}

func (l *loggerImpl) FatalContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, FatalLevel, msg, fields...)
}

func (l *loggerImpl) WithNamespace(parts ...string) Logger {
	newOptions := *l.options
	newOptions.namespaceParts = append(append([]string(nil), l.options.namespaceParts...), parts...)

	child := l.clone()
	child.options = &newOptions
	child.namespace = getNamespaceString(&newOptions)
	return child
}

func (l *loggerImpl) With(fields ...Field) Logger {
	child := l.clone()
	child.baseAttrs = append(append([]slog.Attr(nil), l.baseAttrs...), fields...)
	return child
}

func (l *loggerImpl) clone() *loggerImpl {
	c := *l
	return &c
}

// log 内部方法
func (l *loggerImpl) log(ctx context.Context, level Level, msg string, fields ...Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	if l.router.enabled(l.namespace, level) {
		l.emit(ctx, level, msg, fields)
	}

	if level == FatalLevel {
		l.pipe.flush()
		_ = l.pipe.close()
		l.options.exit(1)
	}
}

func (l *loggerImpl) emit(ctx context.Context, level Level, msg string, fields []Field) {
	slogLevel := toSlogLevel(level)
	if !l.handler.Enabled(ctx, slogLevel) {
		return
	}

	// 准备属性切片：baseAttrs + fields + contextFields + namespace
	attrs := make([]slog.Attr, 0, len(l.baseAttrs)+len(fields)+4)
	attrs = append(attrs, l.baseAttrs...)
	attrs = append(attrs, fields...)
	extractContextFields(ctx, l.options, &attrs)
	addNamespaceFields(l.namespace, &attrs)

	// skip: runtime.Callers, emit, log, Info 等
	var pcs [1]uintptr
	runtime.Callers(4, pcs[:])
	record := slog.NewRecord(time.Now(), slogLevel, msg, pcs[0])
	record.AddAttrs(attrs...)

	_ = l.handler.Handle(ctx, record)
}

// SetLevel 动态调整全局最低级别
func (l *loggerImpl) SetLevel(level Level) error {
	if level < VerboseLevel || level > FatalLevel {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "invalid level %d", int(level))
	}
	l.router.setGlobal(level)
	return nil
}

// Flush 等待远程 sink 发送已入队的日志
func (l *loggerImpl) Flush() {
	l.pipe.flush()
}

// Close 释放 Logger 持有的资源
func (l *loggerImpl) Close() error {
	return l.pipe.close()
}
