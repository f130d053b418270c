package host

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ceyewan/logkit/logplan"
)

// defaultServiceName 计划中没有 Application 富化字段时使用的服务名
const defaultServiceName = "logkit"

// Tracing 返回 gin 跟踪中间件
//
// 请求头中的 W3C traceparent 会被恢复到请求 Context，
// 配合 clog.WithTraceContext，请求日志带上调用方的 trace_id。
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithPropagators(propagation.TraceContext{}))
}

// serviceName 取计划的 Application 富化字段作为服务名
func serviceName(plan *logplan.Plan) string {
	if plan != nil {
		if name := plan.Enrichment[logplan.ApplicationProperty]; name != "" {
			return name
		}
	}
	return defaultServiceName
}
