package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

const upsertPushSubscriptionSuffix = `ON CONFLICT (user_id, endpoint) DO UPDATE SET
	p256dh = EXCLUDED.p256dh,
	auth = EXCLUDED.auth,
	updated_at = EXCLUDED.updated_at
RETURNING *`

type PushSubscriptionRepository struct {
	db *sqlx.DB
}

func NewPushSubscriptionRepository(db *sqlx.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{db: db}
}

func (r *PushSubscriptionRepository) Upsert(ctx context.Context, s pushsubscription.Subscription) (pushsubscription.Subscription, error) {
	now := time.Now().UTC()
	query, args, err := qb.InsertModel("push_subscriptions", pushSubscriptionInsertModel{
		UserID:    s.UserID,
		Endpoint:  s.Endpoint,
		P256dh:    s.P256dh,
		Auth:      s.Auth,
		CreatedAt: now,
		UpdatedAt: now,
	}, upsertPushSubscriptionSuffix)
	if err != nil {
		return pushsubscription.Subscription{}, fmt.Errorf("build upsert push subscription query: %w", err)
	}
	var row pushSubscriptionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return pushsubscription.Subscription{}, fmt.Errorf("upsert push subscription: %w", err)
	}
	return pushSubscriptionFromRow(row), nil
}

func (r *PushSubscriptionRepository) ListByUsers(ctx context.Context, userIDs []int64) (map[int64][]pushsubscription.Subscription, error) {
	out := make(map[int64][]pushsubscription.Subscription, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select("*").From("push_subscriptions").
		Where(qb.Expr("user_id = ANY(?)", pq.Array(userIDs))).
		OrderBy("user_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list push subscriptions query: %w", err)
	}
	var rows []pushSubscriptionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], pushSubscriptionFromRow(row))
	}
	return out, nil
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	query, args, err := qb.DeleteFrom("push_subscriptions").Where(qb.Eq("endpoint", endpoint)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete push subscription query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}
