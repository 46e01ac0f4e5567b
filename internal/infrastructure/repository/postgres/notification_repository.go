package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) HasSent(ctx context.Context, userID, matchID int64, window notification.Window) (bool, error) {
	query, args, err := qb.Select("1").From("notification_markers").
		Where(qb.Eq("user_id", userID), qb.Eq("match_id", matchID), qb.Eq(`"window"`, string(window))).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has sent query: %w", err)
	}
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check notification marker: %w", err)
	}
	return true, nil
}

func (r *NotificationRepository) ListSent(ctx context.Context, matchIDs []int64, window notification.Window) (map[notification.Key]struct{}, error) {
	out := make(map[notification.Key]struct{})
	if len(matchIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select("user_id", "match_id").From("notification_markers").
		Where(qb.Expr("match_id = ANY(?)", pq.Array(matchIDs)), qb.Eq(`"window"`, string(window))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sent query: %w", err)
	}
	var rows []struct {
		UserID  int64 `db:"user_id"`
		MatchID int64 `db:"match_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notification markers: %w", err)
	}
	for _, row := range rows {
		out[notification.Key{UserID: row.UserID, MatchID: row.MatchID}] = struct{}{}
	}
	return out, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, marker notification.Marker) (bool, error) {
	if marker.SentAt.IsZero() {
		marker.SentAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel("notification_markers", notificationMarkerInsertModel{
		UserID:  marker.UserID,
		MatchID: marker.MatchID,
		Window:  marker.Window,
		SentAt:  marker.SentAt,
	}, "ON CONFLICT DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build mark sent query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert notification marker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notification marker rows affected: %w", err)
	}
	return n > 0, nil
}
