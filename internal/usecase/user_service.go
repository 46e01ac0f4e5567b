package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/password"
)

const TokenTypeBearer = "bearer"

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	UserID      int64
	ExpiresAt   time.Time
}

type Profile struct {
	User        user.User
	TotalPoints int
}

type UserService struct {
	users    user.Repository
	preds    prediction.Repository
	hasher   password.Hasher
	tokens   TokenIssuer
	rankings RankingInvalidator
	now      func() time.Time
}

// NewUserService builds the account operations. Rankings carry names and
// emails, so identity changes invalidate them.
func NewUserService(users user.Repository, preds prediction.Repository, hasher password.Hasher, tokens TokenIssuer, rankings RankingInvalidator) *UserService {
	return &UserService{
		users:    users,
		preds:    preds,
		hasher:   hasher,
		tokens:   tokens,
		rankings: invalidatorOrNop(rankings),
		now:      time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Register")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if !validName(input.Name) {
		return user.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !validEmail(input.Email) {
		return user.User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if !validPassword(input.Password) {
		return user.User{}, fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}

	_, exists, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	if exists {
		return user.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.users.Create(ctx, user.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		recordSpanError(span, err)
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserService) Login(ctx context.Context, email, plain string) (LoginResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Login")
	defer span.End()

	email = normalizeEmail(email)
	if email == "" || plain == "" {
		return LoginResult{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	u, exists, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, fmt.Errorf("get user by email: %w", err)
	}
	if !exists {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := s.hasher.Compare(u.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return LoginResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return LoginResult{}, err
	}

	token, expiresAt, err := s.tokens.Issue(ctx, user.Principal{UserID: u.ID, Email: u.Email})
	if err != nil {
		recordSpanError(span, err)
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}

	return LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		UserID:      u.ID,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Profile")
	defer span.End()

	u, err := s.getUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	total, err := s.preds.SumPointsByUser(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("sum user points: %w", err)
	}
	return Profile{User: u, TotalPoints: total}, nil
}

func (s *UserService) UpdateName(ctx context.Context, userID int64, name string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.UpdateName")
	defer span.End()

	name = strings.TrimSpace(name)
	if !validName(name) {
		return user.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return user.User{}, err
	}
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return user.User{}, fmt.Errorf("update user name: %w", err)
	}
	s.rankings.InvalidateRankings(ctx)
	return s.getUser(ctx, userID)
}

func (s *UserService) UpdateEmail(ctx context.Context, userID int64, email string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.UpdateEmail")
	defer span.End()

	email = normalizeEmail(email)
	if !validEmail(email) {
		return user.User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	current, err := s.getUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if current.Email == email {
		return current, nil
	}

	if err := s.users.UpdateEmail(ctx, userID, email); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return user.User{}, fmt.Errorf("update user email: %w", err)
	}
	s.rankings.InvalidateRankings(ctx)
	return s.getUser(ctx, userID)
}

func (s *UserService) getUser(ctx context.Context, userID int64) (user.User, error) {
	if userID <= 0 {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	u, exists, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return u, nil
}
