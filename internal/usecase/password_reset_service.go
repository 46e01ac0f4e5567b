package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	idgen "github.com/rogeliolopezcamara/quiniela-app/internal/platform/id"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/password"
)

const defaultResetTTL = time.Hour

type PasswordResetConfig struct {
	FrontendURL string
	TTL         time.Duration
}

type PasswordResetService struct {
	users  user.Repository
	resets passwordreset.Repository
	hasher password.Hasher
	idGen  idgen.Generator
	cfg    PasswordResetConfig
	now    func() time.Time
}

func NewPasswordResetService(
	users user.Repository,
	resets passwordreset.Repository,
	hasher password.Hasher,
	idGen idgen.Generator,
	cfg PasswordResetConfig,
) *PasswordResetService {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultResetTTL
	}
	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(cfg.FrontendURL), "/")
	return &PasswordResetService{
		users:  users,
		resets: resets,
		hasher: hasher,
		idGen:  idGen,
		cfg:    cfg,
		now:    time.Now,
	}
}

// GenerateLink issues a reset link for the account registered under email.
func (s *PasswordResetService) GenerateLink(ctx context.Context, email string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PasswordResetService.GenerateLink")
	defer span.End()

	email = normalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	u, exists, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("get user by email: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return s.issue(ctx, u.ID)
}

func (s *PasswordResetService) GenerateLinkForUser(ctx context.Context, userID int64) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PasswordResetService.GenerateLinkForUser")
	defer span.End()

	if userID <= 0 {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	_, exists, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return s.issue(ctx, userID)
}

func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PasswordResetService.Reset")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: invalid or expired token", ErrInvalidInput)
	}
	if !validPassword(newPassword) {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}

	rec, exists, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("get reset token: %w", err)
	}
	if !exists || rec.Expired(s.now().UTC()) {
		return fmt.Errorf("%w: invalid or expired token", ErrInvalidInput)
	}
	if rec.Used {
		return fmt.Errorf("%w: %v", ErrInvalidInput, passwordreset.ErrTokenUsed)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.resets.Redeem(ctx, rec.ID, rec.UserID, hash); err != nil {
		if errors.Is(err, passwordreset.ErrTokenUsed) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, passwordreset.ErrTokenUsed)
		}
		recordSpanError(span, err)
		return fmt.Errorf("redeem reset token: %w", err)
	}
	return nil
}

func (s *PasswordResetService) issue(ctx context.Context, userID int64) (string, error) {
	token, err := s.idGen.NewToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now().UTC()
	if _, err := s.resets.Create(ctx, passwordreset.Token{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return s.cfg.FrontendURL + "/reset-password/" + token, nil
}
