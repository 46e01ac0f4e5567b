package httpapi

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
)

func TestIsHandlerSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "httpapi.Handler.GlobalRanking", want: true},
		{in: "httpapi.Handler.", want: false},
		{in: "httpapi.RequestLogging", want: false},
		{in: "httpapi.writeError", want: false},
	}
	for _, tt := range tests {
		if got := isHandlerSpan(tt.in); got != tt.want {
			t.Fatalf("isHandlerSpan(%q)=%v want=%v", tt.in, got, tt.want)
		}
	}
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", " /metrics ", "/docs"} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
	for _, path := range []string{"/v1/ranking", "/v1/groups", "/", "/v1/internal/jobs/send-notifications"} {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

// Not parallel: installs the global tracer provider.
func TestStartSpan_RecordsHandlerSpansWithUser(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	if _, span := startSpan(context.Background(), "httpapi.Handler.Me"); span.SpanContext().IsValid() {
		t.Fatalf("untraced request must not open a root span")
	}

	ctx, parent := tp.Tracer("test").Start(context.Background(), "GET /v1/me")
	ctx = withPrincipal(ctx, user.Principal{UserID: 42, Email: "ana@example.com"})

	_, helper := startSpan(ctx, "httpapi.writeJSON")
	helper.End()
	_, span := startSpan(ctx, "httpapi.Handler.Me")
	span.End()
	parent.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("unexpected span count: got=%d want=%d", len(ended), 2)
	}
	handler := ended[0]
	if handler.Name() != "httpapi.Handler.Me" {
		t.Fatalf("unexpected span name: got=%s", handler.Name())
	}
	if handler.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Fatalf("handler span must be a child of the request span")
	}
	want := attribute.Int64("enduser.id", 42)
	found := false
	for _, kv := range handler.Attributes() {
		if kv == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing %v in %v", want, handler.Attributes())
	}
}
