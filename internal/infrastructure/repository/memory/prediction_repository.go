package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/ranking"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
)

type PredictionRepository struct {
	s   *Store
	now func() time.Time
}

func NewPredictionRepository(s *Store) *PredictionRepository {
	return &PredictionRepository{s: s, now: time.Now}
}

func (r *PredictionRepository) Create(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.findLocked(p.UserID, p.MatchID); ok {
		return prediction.Prediction{}, prediction.ErrDuplicate
	}
	now := r.now().UTC()
	p.ID = r.s.nextID()
	p.Points = 0
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	r.s.predictions[p.ID] = p
	return p, nil
}

func (r *PredictionRepository) GetByID(_ context.Context, id int64) (prediction.Prediction, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.predictions[id]
	return p, ok, nil
}

func (r *PredictionRepository) GetByUserAndMatch(_ context.Context, userID, matchID int64) (prediction.Prediction, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.findLocked(userID, matchID)
	return p, ok, nil
}

func (r *PredictionRepository) Update(_ context.Context, id int64, home, away int) (prediction.Prediction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.predictions[id]
	if !ok {
		return prediction.Prediction{}, nil
	}
	p.Home = home
	p.Away = away
	p.Points = 0
	p.UpdatedAt = r.now().UTC()
	r.s.predictions[id] = p
	return p, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID int64) ([]prediction.WithMatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]prediction.WithMatch, 0)
	for _, p := range r.s.predictions {
		if p.UserID != userID {
			continue
		}
		m, ok := r.s.matches[p.MatchID]
		if !ok {
			continue
		}
		out = append(out, prediction.WithMatch{Prediction: p, Match: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Match.KickoffAt.Equal(out[j].Match.KickoffAt) {
			return out[i].Match.KickoffAt.Before(out[j].Match.KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PredictionRepository) ListMatchIDsByUser(_ context.Context, userID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]int64, 0)
	for _, p := range r.s.predictions {
		if p.UserID == userID {
			out = append(out, p.MatchID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *PredictionRepository) ListPredictors(_ context.Context, matchIDs []int64) (map[int64]map[int64]struct{}, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(matchIDs))
	for _, id := range matchIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[int64]map[int64]struct{})
	for _, p := range r.s.predictions {
		if _, ok := wanted[p.MatchID]; !ok {
			continue
		}
		users, ok := out[p.MatchID]
		if !ok {
			users = make(map[int64]struct{})
			out[p.MatchID] = users
		}
		users[p.UserID] = struct{}{}
	}
	return out, nil
}

func (r *PredictionRepository) SumPointsByUser(_ context.Context, userID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := 0
	for _, p := range r.s.predictions {
		if p.UserID == userID {
			total += p.Points
		}
	}
	return total, nil
}

func (r *PredictionRepository) ListRoundPoints(_ context.Context, scope match.Scope, userIDs []int64) ([]ranking.Contribution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var users map[int64]struct{}
	if userIDs != nil {
		users = make(map[int64]struct{}, len(userIDs))
		for _, id := range userIDs {
			users[id] = struct{}{}
		}
	}

	type roundKey struct {
		userID int64
		round  string
	}
	sums := make(map[roundKey]int)
	for _, p := range r.s.predictions {
		if users != nil {
			if _, ok := users[p.UserID]; !ok {
				continue
			}
		}
		m, ok := r.s.matches[p.MatchID]
		if !ok || m.Round == "" || !scope.Contains(m) {
			continue
		}
		sums[roundKey{userID: p.UserID, round: m.Round}] += p.Points
	}

	out := make([]ranking.Contribution, 0, len(sums))
	for k, pts := range sums {
		out = append(out, ranking.Contribution{UserID: k.userID, Round: k.round, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Round < out[j].Round
	})
	return out, nil
}

func (r *PredictionRepository) ApplyMatchResult(_ context.Context, matchID int64, final scoring.Scoreline, rescore prediction.RescoreFunc) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.matches[matchID]
	if !ok {
		return 0, false, nil
	}
	home, away := final.Home, final.Away
	m.ScoreHome = &home
	m.ScoreAway = &away
	r.s.matches[matchID] = m

	preds := make([]prediction.Prediction, 0)
	for _, p := range r.s.predictions {
		if p.MatchID == matchID {
			preds = append(preds, p)
		}
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i].ID < preds[j].ID })

	now := r.now().UTC()
	for _, a := range rescore(preds) {
		p, ok := r.s.predictions[a.PredictionID]
		if !ok {
			continue
		}
		p.Points = a.Points
		p.UpdatedAt = now
		r.s.predictions[p.ID] = p
	}
	return len(preds), true, nil
}

func (r *PredictionRepository) findLocked(userID, matchID int64) (prediction.Prediction, bool) {
	for _, p := range r.s.predictions {
		if p.UserID == userID && p.MatchID == matchID {
			return p, true
		}
	}
	return prediction.Prediction{}, false
}
