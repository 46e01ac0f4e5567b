package prediction

import (
	"context"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/ranking"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
)

// RescoreFunc computes the points for every prediction of a match.
type RescoreFunc func(preds []Prediction) []scoring.Assignment

type Repository interface {
	// Create returns ErrDuplicate when (user, match) already has a prediction.
	Create(ctx context.Context, p Prediction) (Prediction, error)
	GetByID(ctx context.Context, id int64) (Prediction, bool, error)
	GetByUserAndMatch(ctx context.Context, userID, matchID int64) (Prediction, bool, error)
	// Update overwrites the scoreline and resets points to 0.
	Update(ctx context.Context, id int64, home, away int) (Prediction, error)
	ListByUser(ctx context.Context, userID int64) ([]WithMatch, error)
	ListMatchIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	// ListPredictors returns, per match, the users who predicted it.
	ListPredictors(ctx context.Context, matchIDs []int64) (map[int64]map[int64]struct{}, error)
	SumPointsByUser(ctx context.Context, userID int64) (int, error)
	// ListRoundPoints sums points per (user, round) for matches in scope.
	// A nil userIDs means every user. Matches without a round are skipped.
	ListRoundPoints(ctx context.Context, scope match.Scope, userIDs []int64) ([]ranking.Contribution, error)
	// ApplyMatchResult stores the final score and rewrites the points of every
	// prediction of the match in one transaction. found is false when the
	// match does not exist.
	ApplyMatchResult(ctx context.Context, matchID int64, final scoring.Scoreline, rescore RescoreFunc) (count int, found bool, err error)
}
