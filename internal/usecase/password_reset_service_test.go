package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	passwordresetmock "github.com/rogeliolopezcamara/quiniela-app/internal/mocks/domain/passwordreset"
	"github.com/stretchr/testify/mock"
)

func TestPasswordResetService_LinkAndReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	svc := NewPasswordResetService(repos.users, repos.resets, plainHasher{}, &sequenceIDs{}, PasswordResetConfig{FrontendURL: "https://quiniela.example/", TTL: time.Hour})
	svc.now = fixedClock
	u := repos.mustUser("ana")

	link, err := svc.GenerateLink(ctx, " ANA@example.com ")
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	const prefix = "https://quiniela.example/reset-password/"
	if !strings.HasPrefix(link, prefix) {
		t.Fatalf("unexpected link: %s", link)
	}
	token := strings.TrimPrefix(link, prefix)

	if err := svc.Reset(ctx, token, "nueva-clave"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _, _ := repos.users.GetByID(ctx, u.ID)
	if got.PasswordHash != "hashed:nueva-clave" {
		t.Fatalf("unexpected password hash: %s", got.PasswordHash)
	}

	if err := svc.Reset(ctx, token, "otra-clave"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected reused token to fail with ErrInvalidInput, got %v", err)
	}
}

func TestPasswordResetService_ExpiredToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	svc := NewPasswordResetService(repos.users, repos.resets, plainHasher{}, &sequenceIDs{}, PasswordResetConfig{FrontendURL: "https://quiniela.example", TTL: time.Hour})
	svc.now = fixedClock
	u := repos.mustUser("ana")

	link, err := svc.GenerateLinkForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	token := link[strings.LastIndex(link, "/")+1:]

	svc.now = func() time.Time { return testNow.Add(time.Hour) }
	if err := svc.Reset(ctx, token, "nueva-clave"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestPasswordResetService_UnknownUser(t *testing.T) {
	t.Parallel()

	repos := newMemoryRepos()
	svc := NewPasswordResetService(repos.users, repos.resets, plainHasher{}, &sequenceIDs{}, PasswordResetConfig{})

	if _, err := svc.GenerateLink(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Reset(context.Background(), "missing", "nueva-clave"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown token, got %v", err)
	}
}

func TestPasswordResetService_ResetRedeemRaceUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	resets := passwordresetmock.NewRepository(t)
	svc := NewPasswordResetService(repos.users, resets, plainHasher{}, &sequenceIDs{}, PasswordResetConfig{})
	svc.now = fixedClock

	resets.
		On("GetByToken", mock.Anything, "tok-1").
		Return(passwordreset.Token{ID: 4, UserID: 9, Token: "tok-1", ExpiresAt: testNow.Add(time.Minute)}, true, nil).
		Once()
	resets.
		On("Redeem", mock.Anything, int64(4), int64(9), "hashed:newpass123").
		Return(passwordreset.ErrTokenUsed).
		Once()

	err := svc.Reset(ctx, "tok-1", "newpass123")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrInvalidInput)
	}
}

func TestPasswordResetService_LinkUsesConfiguredTTLUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	u := repos.mustUser("ana")
	resets := passwordresetmock.NewRepository(t)
	svc := NewPasswordResetService(repos.users, resets, plainHasher{}, &sequenceIDs{queued: []string{"abc"}}, PasswordResetConfig{FrontendURL: "https://quiniela.example", TTL: 15 * time.Minute})
	svc.now = fixedClock

	resets.
		On("Create", mock.Anything, mock.MatchedBy(func(tok passwordreset.Token) bool {
			return tok.UserID == u.ID && tok.Token == "abc" && tok.ExpiresAt.Equal(testNow.Add(15*time.Minute))
		})).
		Return(passwordreset.Token{ID: 1, UserID: u.ID, Token: "abc"}, nil).
		Once()

	link, err := svc.GenerateLinkForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	if link != "https://quiniela.example/reset-password/abc" {
		t.Fatalf("unexpected link: got=%s", link)
	}
}
