package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

type CompetitionRepository struct {
	s   *Store
	now func() time.Time
}

func NewCompetitionRepository(s *Store) *CompetitionRepository {
	return &CompetitionRepository{s: s, now: time.Now}
}

func (r *CompetitionRepository) Create(_ context.Context, c competition.Competition) (competition.Competition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.competitions {
		if existing.Code == c.Code {
			return competition.Competition{}, competition.ErrCodeTaken
		}
	}
	now := r.now().UTC()
	c.ID = r.s.nextID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.Leagues = copyLeagues(c.Leagues)
	r.s.competitions[c.ID] = c
	r.s.compMembers[memberKey{parentID: c.ID, userID: c.CreatorID}] = competition.Member{UserID: c.CreatorID, JoinedAt: now}
	return c, nil
}

func (r *CompetitionRepository) GetByID(_ context.Context, id int64) (competition.Competition, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.competitions[id]
	return c, ok, nil
}

func (r *CompetitionRepository) GetByCode(_ context.Context, code string) (competition.Competition, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.competitions {
		if c.Code == code {
			return c, true, nil
		}
	}
	return competition.Competition{}, false, nil
}

func (r *CompetitionRepository) ListByUser(_ context.Context, userID int64) ([]competition.Competition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]competition.Competition, 0)
	for key := range r.s.compMembers {
		if key.userID != userID {
			continue
		}
		if c, ok := r.s.competitions[key.parentID]; ok {
			out = append(out, c)
		}
	}
	sortCompetitions(out)
	return out, nil
}

func (r *CompetitionRepository) ListPublic(_ context.Context) ([]competition.Competition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]competition.Competition, 0)
	for _, c := range r.s.competitions {
		if c.IsPublic {
			out = append(out, c)
		}
	}
	sortCompetitions(out)
	return out, nil
}

func (r *CompetitionRepository) AddMember(_ context.Context, competitionID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := memberKey{parentID: competitionID, userID: userID}
	if _, ok := r.s.compMembers[key]; ok {
		return competition.ErrAlreadyMember
	}
	r.s.compMembers[key] = competition.Member{UserID: userID, JoinedAt: r.now().UTC()}
	return nil
}

func (r *CompetitionRepository) IsMember(_ context.Context, competitionID, userID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.compMembers[memberKey{parentID: competitionID, userID: userID}]
	return ok, nil
}

func (r *CompetitionRepository) ListMembers(_ context.Context, competitionID int64) ([]competition.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]competition.Member, 0)
	for key, m := range r.s.compMembers {
		if key.parentID != competitionID {
			continue
		}
		if u, ok := r.s.users[key.userID]; ok {
			m.Name = u.Name
			m.Email = u.Email
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *CompetitionRepository) CountMembers(_ context.Context, competitionIDs []int64) (map[int64]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]int, len(competitionIDs))
	for _, id := range competitionIDs {
		out[id] = 0
	}
	for key := range r.s.compMembers {
		if _, ok := out[key.parentID]; ok {
			out[key.parentID]++
		}
	}
	return out, nil
}

func (r *CompetitionRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.competitions, id)
	for key := range r.s.compMembers {
		if key.parentID == id {
			delete(r.s.compMembers, key)
		}
	}
	return nil
}

func (r *CompetitionRepository) ListLeagues(_ context.Context) ([]match.League, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[match.LeagueSeason]struct{})
	out := make([]match.League, 0)
	for _, c := range r.s.competitions {
		for _, l := range c.Leagues {
			if _, dup := seen[l.Key()]; dup {
				continue
			}
			seen[l.Key()] = struct{}{}
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Season < out[j].Season
	})
	return out, nil
}

func sortCompetitions(items []competition.Competition) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}
