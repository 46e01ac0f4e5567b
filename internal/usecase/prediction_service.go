package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"go.opentelemetry.io/otel/attribute"
)

type SavePredictionInput struct {
	UserID       int64
	MatchID      int64
	PredictionID int64
	Home         int
	Away         int
}

type PredictionService struct {
	matches      match.Repository
	preds        prediction.Repository
	competitions competition.Repository
	rankings     RankingInvalidator
	metrics      Metrics
	now          func() time.Time
}

func NewPredictionService(
	matches match.Repository,
	preds prediction.Repository,
	competitions competition.Repository,
	rankings RankingInvalidator,
	metrics Metrics,
) *PredictionService {
	return &PredictionService{
		matches:      matches,
		preds:        preds,
		competitions: competitions,
		rankings:     invalidatorOrNop(rankings),
		metrics:      metricsOrNop(metrics),
		now:          time.Now,
	}
}

func (s *PredictionService) Create(ctx context.Context, input SavePredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Create",
		attribute.Int64("match_id", input.MatchID))
	defer span.End()

	if input.UserID <= 0 || input.MatchID <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: user id and match id are required", ErrInvalidInput)
	}
	if err := prediction.ValidateGoals(input.Home, input.Away); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m, err := s.getMatch(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, err
	}
	now := s.now().UTC()
	if m.Started(now) {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrForbidden, prediction.ErrKickoffPassed)
	}

	_, exists, err := s.preds.GetByUserAndMatch(ctx, input.UserID, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction by user and match: %w", err)
	}
	if exists {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrConflict, prediction.ErrDuplicate)
	}

	created, err := s.preds.Create(ctx, prediction.Prediction{
		UserID:    input.UserID,
		MatchID:   input.MatchID,
		Home:      input.Home,
		Away:      input.Away,
		Points:    0,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, prediction.ErrDuplicate) {
			return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrConflict, prediction.ErrDuplicate)
		}
		recordSpanError(span, err)
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}

	s.metrics.PredictionSaved("create")
	s.rankings.InvalidateRankings(ctx)
	return created, nil
}

// Update overwrites the scoreline and resets points. Concurrent edits of the
// same prediction are last-write-wins.
func (s *PredictionService) Update(ctx context.Context, input SavePredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Update",
		attribute.Int64("prediction_id", input.PredictionID))
	defer span.End()

	if input.UserID <= 0 || input.PredictionID <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: user id and prediction id are required", ErrInvalidInput)
	}
	if err := prediction.ValidateGoals(input.Home, input.Away); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	current, exists, err := s.preds.GetByID(ctx, input.PredictionID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction by id: %w", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: prediction not found", ErrNotFound)
	}

	m, err := s.getMatch(ctx, current.MatchID)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if err := prediction.CanEdit(current, m, input.UserID, s.now().UTC()); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrForbidden, err)
	}

	updated, err := s.preds.Update(ctx, current.ID, input.Home, input.Away)
	if err != nil {
		recordSpanError(span, err)
		return prediction.Prediction{}, fmt.Errorf("update prediction: %w", err)
	}

	s.metrics.PredictionSaved("update")
	s.rankings.InvalidateRankings(ctx)
	return updated, nil
}

func (s *PredictionService) ListMine(ctx context.Context, userID int64) ([]prediction.WithMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListMine")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	items, err := s.preds.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}
	return items, nil
}

func (s *PredictionService) AvailableMatches(ctx context.Context, userID int64) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.AvailableMatches")
	defer span.End()

	return s.available(ctx, userID, match.AllLeagues())
}

// AvailableMatchesForCompetition scopes availability to the competition's
// leagues. The caller must be a member unless the competition is public.
func (s *PredictionService) AvailableMatchesForCompetition(ctx context.Context, userID, competitionID int64) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.AvailableMatchesForCompetition",
		attribute.Int64("competition_id", competitionID))
	defer span.End()

	comp, err := loadCompetitionForViewer(ctx, s.competitions, userID, competitionID)
	if err != nil {
		return nil, err
	}
	return s.available(ctx, userID, comp.Scope())
}

func (s *PredictionService) available(ctx context.Context, userID int64, scope match.Scope) ([]match.Match, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	upcoming, err := s.matches.ListKickoffAfter(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}
	predictedIDs, err := s.preds.ListMatchIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predicted match ids: %w", err)
	}

	predicted := make(map[int64]struct{}, len(predictedIDs))
	for _, id := range predictedIDs {
		predicted[id] = struct{}{}
	}
	return match.FilterAvailable(upcoming, now, predicted, scope), nil
}

func (s *PredictionService) getMatch(ctx context.Context, matchID int64) (match.Match, error) {
	m, exists, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match not found", ErrNotFound)
	}
	return m, nil
}

// loadCompetitionForViewer returns the competition when userID is a member or
// the competition is public.
func loadCompetitionForViewer(ctx context.Context, repo competition.Repository, userID, competitionID int64) (competition.Competition, error) {
	if userID <= 0 || competitionID <= 0 {
		return competition.Competition{}, fmt.Errorf("%w: user id and competition id are required", ErrInvalidInput)
	}

	comp, exists, err := repo.GetByID(ctx, competitionID)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition by id: %w", err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition not found", ErrNotFound)
	}
	if comp.IsPublic {
		return comp, nil
	}

	member, err := repo.IsMember(ctx, competitionID, userID)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("check competition member: %w", err)
	}
	if !member {
		return competition.Competition{}, fmt.Errorf("%w: you are not a member of this competition", ErrForbidden)
	}
	return comp, nil
}
