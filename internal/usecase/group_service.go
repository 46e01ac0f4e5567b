package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	idgen "github.com/rogeliolopezcamara/quiniela-app/internal/platform/id"
)

const maxCodeAttempts = 5

type CreateGroupInput struct {
	UserID  int64
	Name    string
	Leagues []match.League
}

type JoinGroupResult struct {
	Group         group.Group
	AlreadyMember bool
}

type GroupService struct {
	groups   group.Repository
	idGen    idgen.Generator
	rankings RankingInvalidator
	now      func() time.Time
}

func NewGroupService(groups group.Repository, idGen idgen.Generator, rankings RankingInvalidator) *GroupService {
	return &GroupService{
		groups:   groups,
		idGen:    idGen,
		rankings: invalidatorOrNop(rankings),
		now:      time.Now,
	}
}

func (s *GroupService) Create(ctx context.Context, input CreateGroupInput) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.UserID <= 0 {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !validName(input.Name) {
		return group.Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	for _, l := range input.Leagues {
		if l.ID <= 0 || l.Season <= 0 {
			return group.Group{}, fmt.Errorf("%w: league id and season must be positive", ErrInvalidInput)
		}
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.idGen.NewInviteCode()
		if err != nil {
			return group.Group{}, fmt.Errorf("generate invite code: %w", err)
		}

		created, err := s.groups.Create(ctx, group.Group{
			Name:       input.Name,
			InviteCode: code,
			CreatorID:  input.UserID,
			CreatedAt:  s.now().UTC(),
			Leagues:    input.Leagues,
		})
		if errors.Is(err, group.ErrInviteCodeTaken) {
			continue
		}
		if err != nil {
			recordSpanError(span, err)
			return group.Group{}, fmt.Errorf("create group: %w", err)
		}
		return created, nil
	}

	return group.Group{}, fmt.Errorf("%w: could not allocate a unique invite code", ErrConflict)
}

// JoinByInviteCode is idempotent: joining a group twice reports
// AlreadyMember instead of failing.
func (s *GroupService) JoinByInviteCode(ctx context.Context, userID int64, code string) (JoinGroupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.JoinByInviteCode")
	defer span.End()

	code = strings.TrimSpace(code)
	if userID <= 0 || code == "" {
		return JoinGroupResult{}, fmt.Errorf("%w: user id and invite code are required", ErrInvalidInput)
	}

	g, exists, err := s.groups.GetByInviteCode(ctx, code)
	if err != nil {
		return JoinGroupResult{}, fmt.Errorf("get group by invite code: %w", err)
	}
	if !exists {
		return JoinGroupResult{}, fmt.Errorf("%w: invalid invite code", ErrNotFound)
	}

	added, err := s.groups.AddMember(ctx, g.ID, userID)
	if err != nil {
		return JoinGroupResult{}, fmt.Errorf("add group member: %w", err)
	}
	if added {
		s.rankings.InvalidateRankings(ctx)
	}
	return JoinGroupResult{Group: g, AlreadyMember: !added}, nil
}

func (s *GroupService) ListMine(ctx context.Context, userID int64) ([]group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListMine")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	groups, err := s.groups.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	return groups, nil
}

func (s *GroupService) ListMembers(ctx context.Context, userID, groupID int64) ([]group.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListMembers")
	defer span.End()

	g, err := loadGroupForMember(ctx, s.groups, userID, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.groups.ListMembers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}
