package memory

import (
	"context"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
)

type PasswordResetRepository struct {
	s *Store
}

func NewPasswordResetRepository(s *Store) *PasswordResetRepository {
	return &PasswordResetRepository{s: s}
}

func (r *PasswordResetRepository) Create(_ context.Context, t passwordreset.Token) (passwordreset.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = r.s.nextID()
	r.s.resetTokens[t.ID] = t
	return t, nil
}

func (r *PasswordResetRepository) GetByToken(_ context.Context, token string) (passwordreset.Token, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.resetTokens {
		if t.Token == token {
			return t, true, nil
		}
	}
	return passwordreset.Token{}, false, nil
}

func (r *PasswordResetRepository) Redeem(_ context.Context, tokenID, userID int64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.resetTokens[tokenID]
	if !ok || t.Used {
		return passwordreset.ErrTokenUsed
	}
	t.Used = true
	r.s.resetTokens[tokenID] = t

	if u, ok := r.s.users[userID]; ok {
		u.PasswordHash = passwordHash
		r.s.users[userID] = u
	}
	return nil
}
