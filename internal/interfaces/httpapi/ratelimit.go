package httpapi

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10_000
	clientIdleTTL     = 15 * time.Minute
)

var errRateLimited = errors.New("too many requests")

// ipLimiter throttles credential endpoints per client address. Buckets for
// idle clients fall out of the LRU after clientIdleTTL.
type ipLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// newIPLimiter returns nil when perMinute <= 0, which disables throttling.
func newIPLimiter(perMinute int) *ipLimiter {
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 4
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	limiter, ok := l.limiters.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Add refreshes the idle TTL for active clients.
	l.limiters.Add(ip, limiter)
	l.mu.Unlock()
	return limiter.Allow()
}

// RateLimitByIP answers 429 once a client exceeds its bucket. Requests whose
// address cannot be resolved share one bucket.
func RateLimitByIP(l *ipLimiter, next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := resolveClientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip) {
			writeError(r.Context(), w, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
