package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var (
	apiTracer = otel.Tracer("quiniela-app/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

// startSpan opens a child span for handler operations. Helper and middleware
// names, and requests without an inbound span, get a no-op span so traces
// stay one level below the request span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !isHandlerSpan(name) {
		return ctx, noopSpan
	}
	ctx, span := apiTracer.Start(ctx, name)
	if p, ok := principalFromContext(ctx); ok {
		span.SetAttributes(attribute.Int64("enduser.id", p.UserID))
	}
	return ctx, span
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}

// shouldTraceRequest drops probes, scrapes and the docs page from tracing.
func shouldTraceRequest(path string) bool {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "/healthz", "/health", "/livez", "/readyz", "/metrics", "/docs", "/openapi.yaml":
		return false
	default:
		return true
	}
}
