package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/ranking"
	idgen "github.com/rogeliolopezcamara/quiniela-app/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
)

type CreateCompetitionInput struct {
	UserID   int64
	Name     string
	IsPublic bool
	Leagues  []match.League
}

// CompetitionStats is one row of the caller's competition dashboard.
type CompetitionStats struct {
	Competition competition.Competition
	MemberCount int
	MyRanking   int
	MyPoints    int
	IsCreator   bool
}

type competitionRanker interface {
	CompetitionTable(ctx context.Context, comp competition.Competition, round string) (ranking.Table, error)
}

type CompetitionService struct {
	competitions competition.Repository
	ranker       competitionRanker
	idGen        idgen.Generator
	rankings     RankingInvalidator
	now          func() time.Time
}

func NewCompetitionService(
	competitions competition.Repository,
	ranker competitionRanker,
	idGen idgen.Generator,
	rankings RankingInvalidator,
) *CompetitionService {
	return &CompetitionService{
		competitions: competitions,
		ranker:       ranker,
		idGen:        idGen,
		rankings:     invalidatorOrNop(rankings),
		now:          time.Now,
	}
}

func (s *CompetitionService) Create(ctx context.Context, input CreateCompetitionInput) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.UserID <= 0 {
		return competition.Competition{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !validName(input.Name) {
		return competition.Competition{}, fmt.Errorf("%w: competition name is required", ErrInvalidInput)
	}

	draft := competition.Competition{
		Name:      input.Name,
		IsPublic:  input.IsPublic,
		CreatorID: input.UserID,
		Leagues:   input.Leagues,
	}
	if err := competition.Validate(draft); err != nil {
		return competition.Competition{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.idGen.NewJoinCode(competition.CodeLength)
		if err != nil {
			return competition.Competition{}, fmt.Errorf("generate competition code: %w", err)
		}

		draft.Code = code
		draft.CreatedAt = s.now().UTC()
		created, err := s.competitions.Create(ctx, draft)
		if errors.Is(err, competition.ErrCodeTaken) {
			continue
		}
		if err != nil {
			recordSpanError(span, err)
			return competition.Competition{}, fmt.Errorf("create competition: %w", err)
		}
		return created, nil
	}

	return competition.Competition{}, fmt.Errorf("%w: could not allocate a unique competition code", ErrConflict)
}

func (s *CompetitionService) JoinByCode(ctx context.Context, userID int64, code string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.JoinByCode")
	defer span.End()

	code = strings.ToLower(strings.TrimSpace(code))
	if userID <= 0 || code == "" {
		return competition.Competition{}, fmt.Errorf("%w: user id and code are required", ErrInvalidInput)
	}

	comp, exists, err := s.competitions.GetByCode(ctx, code)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition by code: %w", err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition not found", ErrNotFound)
	}

	if err := s.competitions.AddMember(ctx, comp.ID, userID); err != nil {
		if errors.Is(err, competition.ErrAlreadyMember) {
			return competition.Competition{}, fmt.Errorf("%w: %v", ErrConflict, competition.ErrAlreadyMember)
		}
		return competition.Competition{}, fmt.Errorf("add competition member: %w", err)
	}

	s.rankings.InvalidateRankings(ctx)
	return comp, nil
}

func (s *CompetitionService) ListMine(ctx context.Context, userID int64) ([]competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListMine")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	items, err := s.competitions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list competitions by user: %w", err)
	}
	return items, nil
}

// ListMineWithStats returns each of the caller's competitions with member
// count and the caller's position and points in its ranking.
func (s *CompetitionService) ListMineWithStats(ctx context.Context, userID int64) ([]CompetitionStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListMineWithStats")
	defer span.End()

	comps, err := s.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return []CompetitionStats{}, nil
	}

	ids := make([]int64, 0, len(comps))
	for _, c := range comps {
		ids = append(ids, c.ID)
	}
	counts, err := s.competitions.CountMembers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count competition members: %w", err)
	}

	out := make([]CompetitionStats, 0, len(comps))
	for _, c := range comps {
		table, err := s.ranker.CompetitionTable(ctx, c, "")
		if err != nil {
			return nil, fmt.Errorf("rank competition %d: %w", c.ID, err)
		}

		row := CompetitionStats{
			Competition: c,
			MemberCount: counts[c.ID],
			IsCreator:   c.IsCreator(userID),
		}
		if entry, ok := ranking.EntryOf(table, userID); ok {
			row.MyRanking = entry.Position
			row.MyPoints = entry.Total
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *CompetitionService) Delete(ctx context.Context, userID, competitionID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Delete", attribute.Int64("competition_id", competitionID))
	defer span.End()

	if userID <= 0 || competitionID <= 0 {
		return fmt.Errorf("%w: user id and competition id are required", ErrInvalidInput)
	}

	comp, exists, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		return fmt.Errorf("get competition by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: competition not found", ErrNotFound)
	}
	if !comp.IsCreator(userID) {
		return fmt.Errorf("%w: only the creator can delete this competition", ErrForbidden)
	}

	if err := s.competitions.Delete(ctx, competitionID); err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("delete competition: %w", err)
	}
	s.rankings.InvalidateRankings(ctx)
	return nil
}

func (s *CompetitionService) ListLeagues(ctx context.Context) ([]match.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListLeagues")
	defer span.End()

	leagues, err := s.competitions.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competition leagues: %w", err)
	}
	return leagues, nil
}

func (s *CompetitionService) ListPublic(ctx context.Context) ([]competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListPublic")
	defer span.End()

	items, err := s.competitions.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public competitions: %w", err)
	}
	return items, nil
}
