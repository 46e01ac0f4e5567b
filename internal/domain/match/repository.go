package match

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Match, error)
	// ListKickoffAfter returns matches with kickoff strictly after t.
	ListKickoffAfter(ctx context.Context, t time.Time) ([]Match, error)
	// ListKickoffBetween returns matches with from < kickoff <= to.
	ListKickoffBetween(ctx context.Context, from, to time.Time) ([]Match, error)
	// Upsert inserts or refreshes fixtures and returns how many rows changed.
	Upsert(ctx context.Context, matches []Match) (int, error)
}
