package resilience

import "golang.org/x/sync/singleflight"

// SingleFlight collapses concurrent calls sharing a key into one execution.
// Jobs key it by job name, the cache and provider client by cache key or URL.
// The zero value is ready to use.
type SingleFlight struct {
	group singleflight.Group
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	return g.group.Do(key, fn)
}

func (g *SingleFlight) Forget(key string) {
	g.group.Forget(key)
}

// Collapse is Do with a typed result. shared reports whether the caller
// joined a call that was already in flight.
func Collapse[T any](g *SingleFlight, key string, fn func() (T, error)) (T, bool, error) {
	v, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}
	out, _ := v.(T)
	return out, shared, nil
}
