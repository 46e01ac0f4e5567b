package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/ranking"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	"go.opentelemetry.io/otel/attribute"
)

const rankingCachePrefix = "ranking:"

type RankingService struct {
	users        user.Repository
	preds        prediction.Repository
	groups       group.Repository
	competitions competition.Repository
	cache        *cache.Store
}

// NewRankingService builds the ranking reads. A nil store disables caching.
func NewRankingService(
	users user.Repository,
	preds prediction.Repository,
	groups group.Repository,
	competitions competition.Repository,
	store *cache.Store,
) *RankingService {
	return &RankingService{
		users:        users,
		preds:        preds,
		groups:       groups,
		competitions: competitions,
		cache:        store,
	}
}

func (s *RankingService) InvalidateRankings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, rankingCachePrefix)
}

// Global ranks every user with at least one scored-round prediction.
func (s *RankingService) Global(ctx context.Context, round string) (ranking.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Global")
	defer span.End()

	opts := ranking.Options{Round: strings.TrimSpace(round)}
	return cache.Load(ctx, s.cache, rankingKey("global", match.AllLeagues(), opts), func(ctx context.Context) (ranking.Table, error) {
		contribs, err := s.preds.ListRoundPoints(ctx, match.AllLeagues(), nil)
		if err != nil {
			return ranking.Table{}, fmt.Errorf("list round points: %w", err)
		}

		ids := make([]int64, 0, len(contribs))
		for _, c := range contribs {
			ids = append(ids, c.UserID)
		}
		users, err := s.users.ListByIDs(ctx, ids)
		if err != nil {
			return ranking.Table{}, fmt.Errorf("list ranked users: %w", err)
		}
		lookup := make(map[int64]ranking.Member, len(users))
		for _, u := range users {
			lookup[u.ID] = ranking.Member{UserID: u.ID, Name: u.Name, Email: u.Email}
		}

		return ranking.Build(ranking.MembersFromContributions(contribs, lookup), contribs, opts), nil
	})
}

func (s *RankingService) Group(ctx context.Context, userID, groupID int64, round string) (ranking.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Group", attribute.Int64("group_id", groupID))
	defer span.End()

	g, err := loadGroupForMember(ctx, s.groups, userID, groupID)
	if err != nil {
		return ranking.Table{}, err
	}

	opts := ranking.Options{Round: strings.TrimSpace(round)}
	key := rankingKey("group:"+strconv.FormatInt(g.ID, 10), g.Scope(), opts)
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (ranking.Table, error) {
		members, err := s.groups.ListMembers(ctx, g.ID)
		if err != nil {
			return ranking.Table{}, fmt.Errorf("list group members: %w", err)
		}
		cohort := make([]ranking.Member, 0, len(members))
		for _, m := range members {
			cohort = append(cohort, ranking.Member{UserID: m.UserID, Name: m.Name, Email: m.Email})
		}
		return s.cohortTable(ctx, cohort, g.Scope(), opts)
	})
}

// Competition ranks the competition's members; public competitions are
// visible to everyone.
func (s *RankingService) Competition(ctx context.Context, userID, competitionID int64, round string) (ranking.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Competition", attribute.Int64("competition_id", competitionID))
	defer span.End()

	comp, err := loadCompetitionForViewer(ctx, s.competitions, userID, competitionID)
	if err != nil {
		return ranking.Table{}, err
	}
	return s.CompetitionTable(ctx, comp, round)
}

// CompetitionTable ranks a competition already loaded and authorized by the
// caller.
func (s *RankingService) CompetitionTable(ctx context.Context, comp competition.Competition, round string) (ranking.Table, error) {
	opts := ranking.Options{Round: strings.TrimSpace(round)}
	key := rankingKey("competition:"+strconv.FormatInt(comp.ID, 10), comp.Scope(), opts)
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (ranking.Table, error) {
		members, err := s.competitions.ListMembers(ctx, comp.ID)
		if err != nil {
			return ranking.Table{}, fmt.Errorf("list competition members: %w", err)
		}
		cohort := make([]ranking.Member, 0, len(members))
		for _, m := range members {
			cohort = append(cohort, ranking.Member{UserID: m.UserID, Name: m.Name, Email: m.Email})
		}
		return s.cohortTable(ctx, cohort, comp.Scope(), opts)
	})
}

func (s *RankingService) cohortTable(ctx context.Context, cohort []ranking.Member, scope match.Scope, opts ranking.Options) (ranking.Table, error) {
	ids := make([]int64, 0, len(cohort))
	for _, m := range cohort {
		ids = append(ids, m.UserID)
	}

	var contribs []ranking.Contribution
	if len(ids) > 0 {
		var err error
		contribs, err = s.preds.ListRoundPoints(ctx, scope, ids)
		if err != nil {
			return ranking.Table{}, fmt.Errorf("list round points: %w", err)
		}
	}
	return ranking.Build(cohort, contribs, opts), nil
}

func rankingKey(cohort string, scope match.Scope, opts ranking.Options) string {
	return rankingCachePrefix + cohort + "|" + scope.Key() + "|" + opts.Round
}

func loadGroupForMember(ctx context.Context, repo group.Repository, userID, groupID int64) (group.Group, error) {
	if userID <= 0 || groupID <= 0 {
		return group.Group{}, fmt.Errorf("%w: user id and group id are required", ErrInvalidInput)
	}

	g, exists, err := repo.GetByID(ctx, groupID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group by id: %w", err)
	}
	if !exists {
		return group.Group{}, fmt.Errorf("%w: group not found", ErrNotFound)
	}

	member, err := repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return group.Group{}, fmt.Errorf("check group member: %w", err)
	}
	if !member {
		return group.Group{}, fmt.Errorf("%w: you are not a member of this group", ErrForbidden)
	}
	return g, nil
}
