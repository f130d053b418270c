package clog

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// extractContextFields 从 context 中提取配置的字段，并追加到 attrs
func extractContextFields(ctx context.Context, options *options, attrs *[]slog.Attr) {
	if ctx == nil || options == nil {
		return
	}

	for _, cf := range options.contextFields {
		if val := ctx.Value(cf.Key); val != nil {
			*attrs = append(*attrs, slog.Any(cf.FieldName, val))
		}
	}

	if options.enableTraceExtraction {
		sc := trace.SpanContextFromContext(ctx)
		if sc.IsValid() {
			*attrs = append(*attrs,
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
		}
	}
}
