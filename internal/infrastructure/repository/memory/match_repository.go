package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

type MatchRepository struct {
	s *Store
}

func NewMatchRepository(s *Store) *MatchRepository {
	return &MatchRepository{s: s}
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.matches[id]
	return m, ok, nil
}

func (r *MatchRepository) ListByIDs(_ context.Context, ids []int64) ([]match.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]match.Match, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.s.matches[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MatchRepository) ListKickoffAfter(_ context.Context, t time.Time) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool { return m.KickoffAt.After(t) }), nil
}

func (r *MatchRepository) ListKickoffBetween(_ context.Context, from, to time.Time) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool {
		return m.KickoffAt.After(from) && !m.KickoffAt.After(to)
	}), nil
}

// Upsert keeps a stored score when the incoming fixture carries none.
func (r *MatchRepository) Upsert(_ context.Context, matches []match.Match) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range matches {
		if old, ok := r.s.matches[m.ID]; ok {
			if m.ScoreHome == nil {
				m.ScoreHome = old.ScoreHome
			}
			if m.ScoreAway == nil {
				m.ScoreAway = old.ScoreAway
			}
		}
		m.ScoreHome = intPtr(m.ScoreHome)
		m.ScoreAway = intPtr(m.ScoreAway)
		r.s.matches[m.ID] = m
	}
	return len(matches), nil
}

func (r *MatchRepository) filter(keep func(match.Match) bool) []match.Match {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, m := range r.s.matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	sortMatches(out)
	return out
}

func sortMatches(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].KickoffAt.Equal(items[j].KickoffAt) {
			return items[i].KickoffAt.Before(items[j].KickoffAt)
		}
		return items[i].ID < items[j].ID
	})
}
