package memory

import (
	"context"
	"sort"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{s: s}
}

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTakenLocked(u.Email, 0) {
		return user.User{}, user.ErrEmailTaken
	}
	u.ID = r.s.nextID()
	r.s.users[u.ID] = u
	return u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	return u, ok, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, ids []int64) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) ListIDs(_ context.Context) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]int64, 0, len(r.s.users))
	for id := range r.s.users {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *UserRepository) UpdateName(_ context.Context, id int64, name string) error {
	return r.update(id, func(u *user.User) error {
		u.Name = name
		return nil
	})
}

func (r *UserRepository) UpdateEmail(_ context.Context, id int64, email string) error {
	return r.update(id, func(u *user.User) error {
		if r.emailTakenLocked(email, id) {
			return user.ErrEmailTaken
		}
		u.Email = email
		return nil
	})
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	return r.update(id, func(u *user.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (r *UserRepository) update(id int64, fn func(*user.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	if err := fn(&u); err != nil {
		return err
	}
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) emailTakenLocked(email string, exceptID int64) bool {
	for id, u := range r.s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
