package jwtauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

var errEmptySecret = errors.New("jwt secret is required")

type Config struct {
	Secret string
	Issuer string
	// TTL of zero issues tokens without an exp claim.
	TTL time.Duration
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 access tokens. Verified principals are
// kept in the cache keyed by the token hash.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	cache  *cache.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewService(cfg Config, principals *cache.Store, logger *logging.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errEmptySecret
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		cache:  principals,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *Service) Issue(_ context.Context, principal user.Principal) (string, time.Time, error) {
	now := s.now().UTC()
	registered := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(principal.UserID, 10),
		Issuer:   s.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
		registered.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Email: principal.Email, RegisteredClaims: registered})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *Service) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := "principal:" + hashToken(token)
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, key); ok {
			if entry, ok := v.(cachedPrincipal); ok && (entry.expiresAt.IsZero() || s.now().Before(entry.expiresAt)) {
				return entry.principal, nil
			}
			s.cache.Delete(ctx, key)
		}
	}

	principal, expiresAt, err := s.parse(token)
	if err != nil {
		s.logger.DebugContext(ctx, "access token rejected", "error", err)
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrUnauthorized, err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, cachedPrincipal{principal: principal, expiresAt: expiresAt})
	}
	return principal, nil
}

func (s *Service) parse(token string) (user.Principal, time.Time, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var parsed claims
	if _, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...); err != nil {
		return user.Principal{}, time.Time{}, err
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return user.Principal{}, time.Time{}, errors.New("invalid subject claim")
	}
	var expiresAt time.Time
	if parsed.ExpiresAt != nil {
		expiresAt = parsed.ExpiresAt.Time
	}
	return user.Principal{UserID: userID, Email: parsed.Email}, expiresAt, nil
}

type cachedPrincipal struct {
	principal user.Principal
	expiresAt time.Time
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
