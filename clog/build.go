package clog

import (
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ceyewan/logkit/internal/remote"
	"github.com/ceyewan/logkit/internal/rolling"
	"github.com/ceyewan/logkit/logplan"
	"github.com/ceyewan/logkit/xerrors"
	"github.com/gofrs/flock"
)

// OverrideSectionKey WithOverrideSource 读取的配置节
const OverrideSectionKey = "Logging"

// overrideKeyPrefix 命名空间覆盖键的前缀，如 Override.Microsoft
const overrideKeyPrefix = "override."

// Build 激活一个解析完成的日志计划
//
// 按计划中的顺序创建 sink：
//   - Console：stdout 上的文本输出，终端中自动着色
//   - File：按周期和大小滚动的文本文件，同一路径同时只能被一个管道使用
//   - Remote：批量发送到 HTTP 接入端
//
// Enrichment 中的字段附加到每条日志。sink 打开失败时只记录诊断日志并跳过该 sink；
// 唯一的例外是文件路径已被另一个管道占用，此时返回 ErrFileSinkInUse 并释放已打开的资源。
// 返回的 Logger 使用完毕后需要调用 Close。
func Build(plan *logplan.Plan, opts ...Option) (Logger, error) {
	if plan == nil {
		return nil, ErrInvalidPlan
	}
	o := applyOptions(opts...)
	effective := applyOverrideSource(plan, o.overrideSource)

	pipe := &pipeline{}
	hopts := handlerOptions(o.addSource, "")
	handlers := make([]slog.Handler, 0, len(effective.Sinks))

	for _, s := range effective.Sinks {
		var (
			h   slog.Handler
			err error
		)
		switch sink := s.(type) {
		case logplan.ConsoleSink:
			h = newConsoleHandler(o, hopts)
		case logplan.FileSink:
			h, err = pipe.openFile(sink, hopts)
		case logplan.RemoteSink:
			h, err = pipe.openRemote(sink, o)
		}
		if err != nil {
			if xerrors.Is(err, ErrFileSinkInUse) {
				_ = pipe.close()
				return nil, err
			}
			// 路径、权限或远程参数问题只禁用该 sink，其余 sink 照常启动
			o.diagnostics.Warn("sink disabled",
				slog.String("sink", s.Kind().String()),
				slog.String("error", err.Error()))
			continue
		}
		handlers = append(handlers, h)
	}

	handler := newFanoutHandler(handlers...)
	if attrs := enrichmentAttrs(effective.Enrichment); len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	o.diagnostics.Debug("logging pipeline activated",
		slog.String("minimum_level", effective.MinimumLevel.String()),
		slog.Int("sinks", len(handlers)),
		slog.Int("overrides", len(effective.LevelOverrides)))

	return &loggerImpl{
		handler:   handler,
		router:    newLevelRouter(effective.MinimumLevel, effective.LevelOverrides),
		pipe:      pipe,
		options:   o,
		namespace: getNamespaceString(o),
	}, nil
}

// newConsoleHandler console sink 输出到 stdout，未强制指定时仅在终端中着色
func newConsoleHandler(o *options, hopts *slog.HandlerOptions) slog.Handler {
	w := o.consoleWriter
	if w == nil {
		w = os.Stdout
	}
	color := isTerminal(w)
	if o.consoleColor != nil {
		color = *o.consoleColor
	}
	return newTextHandler(w, color, hopts)
}

// openFile 加锁后打开滚动文件
func (p *pipeline) openFile(sink logplan.FileSink, hopts *slog.HandlerOptions) (slog.Handler, error) {
	w, err := rolling.New(rolling.Config{
		Path:          sink.Path,
		Interval:      sink.RollingInterval,
		MaxSizeMB:     sink.FileSizeLimitMB,
		RetainedFiles: sink.RetainedFileCount,
	})
	if err != nil {
		return nil, xerrors.Wrapf(err, "open file sink %s", sink.Path)
	}

	// rolling.New 已创建目录，锁文件与日志文件放在一起
	lock := flock.New(sink.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		_ = w.Close()
		return nil, xerrors.Wrapf(err, "lock file sink %s", sink.Path)
	}
	if !locked {
		_ = w.Close()
		return nil, xerrors.Wrapf(ErrFileSinkInUse, "%s", sink.Path)
	}

	p.files = append(p.files, w)
	p.locks = append(p.locks, lock)
	return slog.NewTextHandler(w, hopts), nil
}

// openRemote 启动远程 sink
func (p *pipeline) openRemote(sink logplan.RemoteSink, o *options) (slog.Handler, error) {
	cfg := remote.Config{
		Endpoint:      sink.Endpoint,
		Token:         sink.Token,
		BatchSize:     o.remote.BatchSize,
		FlushInterval: o.remote.FlushInterval,
		QueueSize:     o.remote.QueueSize,
		Timeout:       o.remote.Timeout,
		MaxRetries:    o.remote.MaxRetries,
		Encoding:      o.remote.Encoding,
		RateLimit:     o.remote.RateLimit,
	}
	h, err := remote.New(cfg,
		remote.WithHTTPClient(o.httpClient),
		remote.WithLogger(o.diagnostics),
		remote.WithRegisterer(o.registerer),
	)
	if err != nil {
		return nil, xerrors.Wrap(err, "open remote sink")
	}
	p.remote = h
	return h, nil
}

// applyOverrideSource 在计划副本上叠加 Logging 节，不修改原计划
func applyOverrideSource(plan *logplan.Plan, src logplan.SectionReader) *logplan.Plan {
	effective := plan.Clone()
	if src == nil {
		return effective
	}
	section, ok := src.Section(OverrideSectionKey)
	if !ok {
		return effective
	}

	if v, ok := section.Lookup("MinimumLevel"); ok && strings.TrimSpace(v) != "" {
		effective.MinimumLevel = logplan.ParseLevel(v)
	}

	for _, key := range section.Keys() {
		if !strings.HasPrefix(strings.ToLower(key), overrideKeyPrefix) {
			continue
		}
		namespace := key[len(overrideKeyPrefix):]
		if strings.TrimSpace(namespace) == "" {
			continue
		}
		value, _ := section.Lookup(key)
		if effective.LevelOverrides == nil {
			effective.LevelOverrides = make(map[string]logplan.Level)
		}
		// 配置来源的键可能已被转为小写，同名不同大小写的旧键需要移除
		for existing := range effective.LevelOverrides {
			if strings.EqualFold(existing, namespace) {
				delete(effective.LevelOverrides, existing)
			}
		}
		effective.LevelOverrides[namespace] = logplan.ParseLevel(value)
	}
	return effective
}

// enrichmentAttrs 按键排序，保证输出稳定
func enrichmentAttrs(enrichment map[string]string) []slog.Attr {
	if len(enrichment) == 0 {
		return nil
	}
	keys := make([]string, 0, len(enrichment))
	for k := range enrichment {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, enrichment[k]))
	}
	return attrs
}
