package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/resilience"
)

const defaultMaxEntries = 4096

var ErrNilLoader = errors.New("cache loader is required")

// Store is a bounded TTL cache with load deduplication. Entries are evicted by
// age or when the store is full, oldest first.
//
// Every Delete or DeletePrefix starts a new generation. A load that began in an
// earlier generation still returns its value to its callers but never writes
// it back, and later callers start a fresh load instead of joining it.
type Store struct {
	lru    *expirable.LRU[string, any]
	flight resilience.SingleFlight

	mu  sync.Mutex
	gen uint64
}

func NewStore(ttl time.Duration) *Store {
	return NewStoreWithSize(defaultMaxEntries, ttl)
}

func NewStoreWithSize(maxEntries int, ttl time.Duration) *Store {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Store{lru: expirable.NewLRU[string, any](maxEntries, nil, ttl)}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	return s.lru.Get(key)
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}
	s.lru.Add(key, value)
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.lru.Remove(key)
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	for _, key := range s.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.lru.Remove(key)
		}
	}
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// setIfGeneration stores value only when no invalidation happened since gen
// was read.
func (s *Store) setIfGeneration(key string, value any, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.lru.Add(key, value)
	return true
}

func (s *Store) Len() int {
	return s.lru.Len()
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	gen := s.generation()
	value, err, _ := s.flight.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.setIfGeneration(key, loaded, gen)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Load is GetOrLoad with a typed result. A cached value of another type is
// treated as a miss and reloaded.
func Load[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if s == nil {
		return loader(ctx)
	}

	if cached, ok := s.Get(ctx, key); ok {
		if typed, ok := cached.(T); ok {
			return typed, nil
		}
		s.Delete(ctx, key)
	}

	value, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errors.New("cache: unexpected value type for " + key)
	}
	return typed, nil
}
