package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
)

type GroupRepository struct {
	s   *Store
	now func() time.Time
}

func NewGroupRepository(s *Store) *GroupRepository {
	return &GroupRepository{s: s, now: time.Now}
}

func (r *GroupRepository) Create(_ context.Context, g group.Group) (group.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.groups {
		if existing.InviteCode == g.InviteCode {
			return group.Group{}, group.ErrInviteCodeTaken
		}
	}
	now := r.now().UTC()
	g.ID = r.s.nextID()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.Leagues = copyLeagues(g.Leagues)
	r.s.groups[g.ID] = g
	r.addMemberLocked(g.ID, g.CreatorID, now)
	return g, nil
}

func (r *GroupRepository) GetByID(_ context.Context, id int64) (group.Group, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	return g, ok, nil
}

func (r *GroupRepository) GetByInviteCode(_ context.Context, code string) (group.Group, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, g := range r.s.groups {
		if g.InviteCode == code {
			return g, true, nil
		}
	}
	return group.Group{}, false, nil
}

func (r *GroupRepository) ListByUser(_ context.Context, userID int64) ([]group.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]group.Group, 0)
	for key := range r.s.groupMembers {
		if key.userID != userID {
			continue
		}
		if g, ok := r.s.groups[key.parentID]; ok {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *GroupRepository) AddMember(_ context.Context, groupID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groupMembers[memberKey{parentID: groupID, userID: userID}]; ok {
		return false, nil
	}
	r.addMemberLocked(groupID, userID, r.now().UTC())
	return true, nil
}

func (r *GroupRepository) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.groupMembers[memberKey{parentID: groupID, userID: userID}]
	return ok, nil
}

func (r *GroupRepository) ListMembers(_ context.Context, groupID int64) ([]group.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]group.Member, 0)
	for key, m := range r.s.groupMembers {
		if key.parentID != groupID {
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

func (r *GroupRepository) addMemberLocked(groupID, userID int64, at time.Time) {
	r.s.groupMembers[memberKey{parentID: groupID, userID: userID}] = group.Member{UserID: userID, JoinedAt: at}
}
