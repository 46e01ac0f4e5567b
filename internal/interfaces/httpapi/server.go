package httpapi

import (
	"net/http"

	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	InternalJobToken   string
	ResetSecret        string
	SwaggerEnabled     bool
	// AuthRateLimitPerMinute throttles credential endpoints per client IP;
	// 0 disables it.
	AuthRateLimitPerMinute int
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	Observer       RequestObserver
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg)
	registerPublicRoutes(mux, handler, newIPLimiter(cfg.AuthRateLimitPerMinute))
	registerAuthorizedRoutes(mux, handler, verifier)
	registerSharedSecretRoutes(mux, handler, cfg)

	return RequestTracing(
		RequestMetrics(cfg.Observer,
			RequestLogging(logger,
				CORS(cfg.CORSAllowedOrigins,
					recoverPanic(logger, captureRoute(mux))))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
