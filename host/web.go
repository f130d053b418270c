package host

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/logkit/clog"
	"github.com/ceyewan/logkit/logplan"
)

// unmatchedRoute 未命中路由时的 route 字段，避免把原始路径当作路由
const unmatchedRoute = "unmatched"

// WebBuilder Web 应用宿主，在 Builder 的基础上创建 gin 引擎
type WebBuilder struct {
	builder    *Builder
	middleware []gin.HandlerFunc
}

// NewWeb 创建 WebBuilder
//
// Web 应用默认开启 clog.WithTraceContext。
func NewWeb(opts ...Option) *WebBuilder {
	opts = append([]Option{WithBuildOptions(clog.WithTraceContext())}, opts...)
	return &WebBuilder{builder: New(opts...)}
}

// UseLogging 与 Builder.UseLogging 相同，返回 WebBuilder 以便链式调用
func (w *WebBuilder) UseLogging(configure func(*logplan.Options)) *WebBuilder {
	w.builder.UseLogging(configure)
	return w
}

// Use 追加在请求日志之后执行的中间件
func (w *WebBuilder) Use(middleware ...gin.HandlerFunc) *WebBuilder {
	w.middleware = append(w.middleware, middleware...)
	return w
}

// WebApp WebBuilder.Build 的结果
type WebApp struct {
	*App
	Engine *gin.Engine
}

// Build 激活日志并创建 gin 引擎，引擎已安装跟踪、请求日志和 panic 恢复中间件
//
// 请求日志在恢复中间件外层，panic 被恢复后仍会记录一条 500 的请求日志。
func (w *WebBuilder) Build(ctx context.Context) (*WebApp, error) {
	app, err := w.builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(Tracing(serviceName(app.Plan)), RequestLogger(app.Logger), Recovery(app.Logger))
	engine.Use(w.middleware...)

	return &WebApp{App: app, Engine: engine}, nil
}

// RequestLogger 记录每个请求的方法、路由、状态码、耗时和客户端 IP
//
// 5xx 记为 Error，4xx 记为 Warn，其余记为 Info。
func RequestLogger(logger clog.Logger) gin.HandlerFunc {
	logger = logger.WithNamespace("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()

		fields := []clog.Field{
			clog.String("method", c.Request.Method),
			clog.String("route", route),
			clog.String("path", c.Request.URL.Path),
			clog.Int("status", status),
			clog.Duration("latency", time.Since(start)),
			clog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, clog.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "request completed", fields...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(ctx, "request completed", fields...)
		default:
			logger.InfoContext(ctx, "request completed", fields...)
		}
	}
}

// Recovery 捕获 handler 中的 panic，记录日志并返回 500
func Recovery(logger clog.Logger) gin.HandlerFunc {
	logger = logger.WithNamespace("http")
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			clog.Any("panic", recovered),
			clog.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
