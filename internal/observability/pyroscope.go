package observability

import (
	"fmt"

	"github.com/grafana/pyroscope-go"

	"github.com/rogeliolopezcamara/quiniela-app/internal/config"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
)

// profileTypes per binary. The job runner is short-lived and fan-out heavy,
// so goroutine profiles matter more than in-use heap there.
var profileTypes = map[Component][]pyroscope.ProfileType{
	ComponentAPI: {
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	},
	ComponentJobs: {
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileGoroutines,
	},
}

func pyroscopeConfig(cfg config.Config, component Component) pyroscope.Config {
	types, ok := profileTypes[component]
	if !ok {
		types = profileTypes[ComponentAPI]
	}
	return pyroscope.Config{
		ApplicationName:   fmt.Sprintf("%s.%s", cfg.PyroscopeAppName, component),
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":       cfg.AppEnv,
			"service":   ServiceName(cfg, component),
			"version":   cfg.ServiceVersion,
			"component": string(component),
			"storage":   cfg.StorageDriver,
		},
		ProfileTypes: types,
	}
}

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, component Component, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "component", component)
		return func() error { return nil }, nil
	}

	pc := pyroscopeConfig(cfg, component)
	profiler, err := pyroscope.Start(pc)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("pyroscope enabled", "server_address", pc.ServerAddress, "application", pc.ApplicationName)
	return profiler.Stop, nil
}
