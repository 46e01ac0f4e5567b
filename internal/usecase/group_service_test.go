package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	groupmock "github.com/rogeliolopezcamara/quiniela-app/internal/mocks/domain/group"
	"github.com/stretchr/testify/mock"
)

func TestGroupService_CreateAndJoin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	inv := &recordingInvalidator{}
	svc := NewGroupService(repos.groups, &sequenceIDs{}, inv)
	svc.now = fixedClock
	owner := repos.mustUser("ana")
	guest := repos.mustUser("beto")

	g, err := svc.Create(ctx, CreateGroupInput{UserID: owner.ID, Name: " Oficina ", Leagues: []match.League{{ID: 262, Season: 2025}}})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if g.Name != "Oficina" || len(g.InviteCode) != 8 {
		t.Fatalf("unexpected group: %+v", g)
	}

	joined, err := svc.JoinByInviteCode(ctx, guest.ID, g.InviteCode)
	if err != nil {
		t.Fatalf("join group: %v", err)
	}
	if joined.AlreadyMember || joined.Group.ID != g.ID {
		t.Fatalf("unexpected join result: %+v", joined)
	}

	again, err := svc.JoinByInviteCode(ctx, guest.ID, g.InviteCode)
	if err != nil {
		t.Fatalf("join group twice: %v", err)
	}
	if !again.AlreadyMember {
		t.Fatalf("second join must report already member")
	}
	if inv.calls != 1 {
		t.Fatalf("only a new membership invalidates rankings, got %d calls", inv.calls)
	}

	members, err := svc.ListMembers(ctx, owner.ID, g.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].Name != "ana" {
		t.Fatalf("unexpected members: %+v", members)
	}

	mine, _ := svc.ListMine(ctx, guest.ID)
	if len(mine) != 1 || mine[0].ID != g.ID {
		t.Fatalf("unexpected groups for guest: %+v", mine)
	}
}

func TestGroupService_JoinUnknownCode(t *testing.T) {
	t.Parallel()

	repos := newMemoryRepos()
	svc := NewGroupService(repos.groups, &sequenceIDs{}, nil)
	u := repos.mustUser("ana")

	if _, err := svc.JoinByInviteCode(context.Background(), u.ID, "nope1234"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupService_CreateRetriesOnCodeCollisionUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	groupRepo := groupmock.NewRepository(t)
	ids := &sequenceIDs{queued: []string{"taken000", "fresh000"}}
	svc := NewGroupService(groupRepo, ids, nil)
	svc.now = fixedClock

	groupRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(g group.Group) bool { return g.InviteCode == "taken000" })).
		Return(group.Group{}, group.ErrInviteCodeTaken).
		Once()
	groupRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(g group.Group) bool { return g.InviteCode == "fresh000" })).
		Return(group.Group{ID: 5, Name: "Oficina", InviteCode: "fresh000", CreatorID: 1}, nil).
		Once()

	got, err := svc.Create(ctx, CreateGroupInput{UserID: 1, Name: "Oficina"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if got.InviteCode != "fresh000" {
		t.Fatalf("unexpected invite code: got=%s want=%s", got.InviteCode, "fresh000")
	}
}
