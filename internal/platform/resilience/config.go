package resilience

import (
	"fmt"
	"time"
)

// CircuitBreakerConfig is the per-provider breaker tuning read from
// <PREFIX>_CIRCUIT_* variables.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Validate reports values that NormalizeCircuitBreakerConfig would replace
// silently. A disabled breaker is always valid.
func (c CircuitBreakerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.FailureThreshold < 1:
		return fmt.Errorf("failure threshold must be >= 1, got %d", c.FailureThreshold)
	case c.OpenTimeout <= 0:
		return fmt.Errorf("open timeout must be positive, got %s", c.OpenTimeout)
	case c.HalfOpenMaxReq < 1:
		return fmt.Errorf("half-open probes must be >= 1, got %d", c.HalfOpenMaxReq)
	}
	return nil
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// BreakerFromConfig returns nil when the breaker is disabled; a nil breaker
// always allows calls.
func BreakerFromConfig(name string, cfg CircuitBreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	cfg = NormalizeCircuitBreakerConfig(cfg)
	return NewCircuitBreaker(name, cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq, opts...)
}
