package observability

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/rogeliolopezcamara/quiniela-app/internal/config"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
)

// Component identifies which binary is reporting telemetry.
type Component string

const (
	ComponentAPI  Component = "api"
	ComponentJobs Component = "jobs"
)

const tracingFlushTimeout = 5 * time.Second

// ServiceName derives the per-binary service name: the API keeps the
// configured name and the job runner swaps its "-api" suffix for "-jobs".
func ServiceName(cfg config.Config, component Component) string {
	name := strings.TrimSpace(cfg.ServiceName)
	if component == "" || component == ComponentAPI {
		return name
	}
	return strings.TrimSuffix(name, "-"+string(ComponentAPI)) + "-" + string(component)
}

// InitUptrace exports traces and metrics to Uptrace. The returned func
// flushes pending spans; it never blocks longer than tracingFlushTimeout.
func InitUptrace(cfg config.Config, component Component, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func(context.Context) error { return nil }

	switch {
	case !cfg.UptraceEnabled:
		logger.Info("uptrace disabled", "component", component)
		return noop, nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Warn("uptrace enabled without dsn; tracing stays local", "component", component)
		return noop, nil
	}

	service := ServiceName(cfg, component)
	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(service),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(false),
	)
	logger.Info("uptrace enabled", "service_name", service, "environment", cfg.AppEnv)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, tracingFlushTimeout)
		defer cancel()
		return uptrace.Shutdown(ctx)
	}, nil
}
