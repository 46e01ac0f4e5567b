package cache

import (
	"context"
	"strconv"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	basecache "github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
)

const competitionPrefix = "competition:"

// CompetitionRepository caches the read-mostly competition lookups. Writes that
// change a competition or the league set drop every cached competition key.
type CompetitionRepository struct {
	competition.Repository
	cache *basecache.Store
}

func NewCompetitionRepository(next competition.Repository, cache *basecache.Store) *CompetitionRepository {
	return &CompetitionRepository{Repository: next, cache: cache}
}

func (r *CompetitionRepository) GetByID(ctx context.Context, id int64) (competition.Competition, bool, error) {
	key := competitionPrefix + "id:" + strconv.FormatInt(id, 10)
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (cachedCompetition, error) {
		item, exists, err := r.Repository.GetByID(ctx, id)
		if err != nil {
			return cachedCompetition{}, err
		}
		return cachedCompetition{value: item, exists: exists}, nil
	})
	if err != nil {
		return competition.Competition{}, false, err
	}
	return cloneCompetition(cached.value), cached.exists, nil
}

func (r *CompetitionRepository) GetByCode(ctx context.Context, code string) (competition.Competition, bool, error) {
	key := competitionPrefix + "code:" + code
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (cachedCompetition, error) {
		item, exists, err := r.Repository.GetByCode(ctx, code)
		if err != nil {
			return cachedCompetition{}, err
		}
		return cachedCompetition{value: item, exists: exists}, nil
	})
	if err != nil {
		return competition.Competition{}, false, err
	}
	return cloneCompetition(cached.value), cached.exists, nil
}

func (r *CompetitionRepository) ListPublic(ctx context.Context) ([]competition.Competition, error) {
	items, err := basecache.Load(ctx, r.cache, competitionPrefix+"public", r.Repository.ListPublic)
	if err != nil {
		return nil, err
	}
	out := make([]competition.Competition, 0, len(items))
	for _, item := range items {
		out = append(out, cloneCompetition(item))
	}
	return out, nil
}

func (r *CompetitionRepository) ListLeagues(ctx context.Context) ([]match.League, error) {
	items, err := basecache.Load(ctx, r.cache, competitionPrefix+"leagues", r.Repository.ListLeagues)
	if err != nil {
		return nil, err
	}
	return append([]match.League(nil), items...), nil
}

func (r *CompetitionRepository) Create(ctx context.Context, c competition.Competition) (competition.Competition, error) {
	created, err := r.Repository.Create(ctx, c)
	if err != nil {
		return competition.Competition{}, err
	}
	r.cache.DeletePrefix(ctx, competitionPrefix)
	return created, nil
}

func (r *CompetitionRepository) Delete(ctx context.Context, id int64) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, competitionPrefix)
	return nil
}

type cachedCompetition struct {
	value  competition.Competition
	exists bool
}

func cloneCompetition(c competition.Competition) competition.Competition {
	c.Leagues = append([]match.League(nil), c.Leagues...)
	return c
}
