package jwtauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

var issuedAt = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	svc, err := NewService(Config{Secret: "test-secret", Issuer: "quiniela-api", TTL: ttl}, cache.NewStore(time.Minute), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.now = func() time.Time { return issuedAt }
	return svc
}

func TestService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Hour)
	token, expiresAt, err := svc.Issue(context.Background(), user.Principal{UserID: 42, Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(issuedAt.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: got=%v want=%v", expiresAt, issuedAt.Add(time.Hour))
	}

	principal, err := svc.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.UserID != 42 || principal.Email != "ana@example.com" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestService_RejectsExpiredToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Hour)
	token, _, err := svc.Issue(context.Background(), user.Principal{UserID: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := svc.VerifyAccessToken(context.Background(), token); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestService_CachedPrincipalHonoursExpiry(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Hour)
	token, _, _ := svc.Issue(context.Background(), user.Principal{UserID: 7})
	if _, err := svc.VerifyAccessToken(context.Background(), token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	if _, err := svc.VerifyAccessToken(context.Background(), token); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected cached entry to expire with the token, got %v", err)
	}
}

func TestService_RejectsForeignSignatureAndAlgorithm(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 0)
	other, _ := NewService(Config{Secret: "other-secret", Issuer: "quiniela-api"}, nil, nil)
	foreign, _, _ := other.Issue(context.Background(), user.Principal{UserID: 1})
	if _, err := svc.VerifyAccessToken(context.Background(), foreign); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign signature, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", Issuer: "quiniela-api"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.VerifyAccessToken(context.Background(), unsigned); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for alg none, got %v", err)
	}
}

func TestService_RejectsWrongIssuerAndBadSubject(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 0)
	for name, c := range map[string]jwt.RegisteredClaims{
		"issuer":  {Subject: "1", Issuer: "someone-else"},
		"subject": {Subject: "abc", Issuer: "quiniela-api"},
	} {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("%s: sign: %v", name, err)
		}
		if _, err := svc.VerifyAccessToken(context.Background(), token); !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewService(Config{Secret: "  "}, nil, nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
