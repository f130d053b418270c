// Package host 是应用接入日志配置的入口。
//
// Builder 在启动时加载分层配置、解析日志计划并激活日志管道：
//
//	app, err := host.New().
//	    UseLogging(func(o *logplan.Options) {
//	        o.ApplicationName = "Orders"
//	        o.MinimumLevel = "Debug"
//	    }).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close(context.Background())
//
// Web 应用使用 WebBuilder，它额外创建一个带请求日志中间件的 gin 引擎。
package host

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"github.com/ceyewan/logkit/clog"
	"github.com/ceyewan/logkit/config"
	"github.com/ceyewan/logkit/logplan"
	"github.com/ceyewan/logkit/xerrors"
)

// minimumLevelKey 热更新监听的配置键
const minimumLevelKey = config.LoggingSectionKey + ".minimumlevel"

// Builder 通用应用宿主
type Builder struct {
	opts      *options
	configure func(*logplan.Options)
	logging   bool
	errs      xerrors.Collector
}

// New 创建 Builder
func New(opts ...Option) *Builder {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Builder{opts: o}
}

// UseLogging 注册日志配置，configure 可以为 nil
//
// 每个 builder 只能调用一次，重复调用的错误由 Build 返回。
func (b *Builder) UseLogging(configure func(*logplan.Options)) *Builder {
	if b.logging {
		b.errs.Collect(ErrLoggingConfigured)
		return b
	}
	b.logging = true
	b.configure = configure
	return b
}

// App Build 的结果
type App struct {
	// Logger 激活后的日志管道，未调用 UseLogging 时为 clog.Discard()
	Logger clog.Logger

	// Plan 解析出的日志计划，未调用 UseLogging 时为 nil
	Plan *logplan.Plan

	// Config 分层配置
	Config config.Loader

	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

// Build 加载配置、解析并激活日志计划
//
// 配置文件格式错误时直接返回错误；配置校验问题只记录为警告，不影响启动。
func (b *Builder) Build(ctx context.Context) (*App, error) {
	if err := b.errs.Err(); err != nil {
		return nil, err
	}

	loader, err := b.loader(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{Logger: clog.Discard(), Config: loader}
	if !b.logging {
		return app, nil
	}

	plan := logplan.Resolve(b.configure, loader)
	buildOpts := append([]clog.Option{clog.WithOverrideSource(loader)}, b.opts.buildOpts...)
	logger, err := clog.Build(plan, buildOpts...)
	if err != nil {
		return nil, xerrors.Wrap(err, "activate logging")
	}
	app.Logger = logger
	app.Plan = plan

	if err := loader.Validate(); err != nil {
		logger.Warn("logging configuration has problems", clog.Error(err))
	}
	logger.Debug("logging configured",
		clog.String("minimum_level", plan.MinimumLevel.String()),
		clog.Int("sinks", len(plan.Sinks)))

	watchCtx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	b.watchLevel(watchCtx, app)

	return app, nil
}

// loader 返回外部传入的加载器，或创建并加载一个新的
func (b *Builder) loader(ctx context.Context) (config.Loader, error) {
	if b.opts.loader != nil {
		return b.opts.loader, nil
	}
	loader, err := config.New(b.opts.configOpts...)
	if err != nil {
		return nil, err
	}
	if err := loader.Load(ctx); err != nil {
		return nil, err
	}
	return loader, nil
}

// watchLevel 配置文件中的 Logging.MinimumLevel 变化时调整全局级别
//
// 配置项被删除时回到计划中的级别。
func (b *Builder) watchLevel(ctx context.Context, app *App) {
	events, err := app.Config.Watch(ctx, minimumLevelKey)
	if err != nil {
		app.Logger.Warn("level hot reload disabled", clog.Error(err))
		return
	}

	go func() {
		for ev := range events {
			level := app.Plan.MinimumLevel
			if value := cast.ToString(ev.Value); strings.TrimSpace(value) != "" {
				level = logplan.ParseLevel(value)
			}
			if err := app.Logger.SetLevel(level); err != nil {
				continue
			}
			app.Logger.Info("minimum level changed", clog.String("level", level.String()))
		}
	}()
}

// Close 停止配置监听并关闭日志管道，可重复调用
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		done := make(chan error, 1)
		go func() { done <- a.Logger.Close() }()
		select {
		case a.closeErr = <-done:
		case <-ctx.Done():
			a.closeErr = ctx.Err()
		}
	})
	return a.closeErr
}
