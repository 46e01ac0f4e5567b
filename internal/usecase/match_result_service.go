package usecase

import (
	"context"
	"fmt"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type MatchResultService struct {
	preds    prediction.Repository
	rankings RankingInvalidator
	metrics  Metrics
	logger   *logging.Logger
}

func NewMatchResultService(preds prediction.Repository, rankings RankingInvalidator, metrics Metrics, logger *logging.Logger) *MatchResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchResultService{
		preds:    preds,
		rankings: invalidatorOrNop(rankings),
		metrics:  metricsOrNop(metrics),
		logger:   logger,
	}
}

// ApplyResult stores the final score and re-scores every prediction of the
// match atomically. Re-applying the same result yields the same points.
func (s *MatchResultService) ApplyResult(ctx context.Context, matchID int64, home, away int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchResultService.ApplyResult",
		attribute.Int64("match_id", matchID))
	defer span.End()

	if matchID <= 0 {
		return 0, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if home < 0 || away < 0 {
		return 0, fmt.Errorf("%w: scores must be non-negative", ErrInvalidInput)
	}

	final := scoring.Scoreline{Home: home, Away: away}
	count, found, err := s.preds.ApplyMatchResult(ctx, matchID, final, func(preds []prediction.Prediction) []scoring.Assignment {
		return scoring.ScoreAll(prediction.Picks(preds), final)
	})
	if err != nil {
		recordSpanError(span, err)
		return 0, fmt.Errorf("apply match result: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: match not found", ErrNotFound)
	}

	s.metrics.PredictionsRescored(count)
	s.rankings.InvalidateRankings(ctx)
	s.logger.InfoContext(ctx, "match result applied",
		"match_id", matchID,
		"score", fmt.Sprintf("%d-%d", home, away),
		"rescored", count,
	)
	return count, nil
}
