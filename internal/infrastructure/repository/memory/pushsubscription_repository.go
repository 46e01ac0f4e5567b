package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
)

type PushSubscriptionRepository struct {
	s   *Store
	now func() time.Time
}

func NewPushSubscriptionRepository(s *Store) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{s: s, now: time.Now}
}

func (r *PushSubscriptionRepository) Upsert(_ context.Context, sub pushsubscription.Subscription) (pushsubscription.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.now().UTC()
	key := subscriptionKey{userID: sub.UserID, endpoint: sub.Endpoint}
	if existing, ok := r.s.subscriptions[key]; ok {
		existing.P256dh = sub.P256dh
		existing.Auth = sub.Auth
		existing.UpdatedAt = now
		r.s.subscriptions[key] = existing
		return existing, nil
	}
	sub.ID = r.s.nextID()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	r.s.subscriptions[key] = sub
	return sub, nil
}

func (r *PushSubscriptionRepository) ListByUsers(_ context.Context, userIDs []int64) (map[int64][]pushsubscription.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[int64][]pushsubscription.Subscription)
	for key, sub := range r.s.subscriptions {
		if _, ok := wanted[key.userID]; ok {
			out[key.userID] = append(out[key.userID], sub)
		}
	}
	for _, subs := range out {
		sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	}
	return out, nil
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(_ context.Context, endpoint string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key := range r.s.subscriptions {
		if key.endpoint == endpoint {
			delete(r.s.subscriptions, key)
		}
	}
	return nil
}
