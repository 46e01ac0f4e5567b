package pushsubscription

import "context"

type Repository interface {
	// Upsert keys on (user, endpoint) and refreshes the encryption keys.
	Upsert(ctx context.Context, s Subscription) (Subscription, error)
	ListByUsers(ctx context.Context, userIDs []int64) (map[int64][]Subscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}
