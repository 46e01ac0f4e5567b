package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
)

func TestUserRepository_EmailUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	a, err := repo.Create(ctx, user.User{Name: "A", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, user.User{Name: "A2", Email: "a@example.com"}); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("unexpected error: got=%v want=%v", err, user.ErrEmailTaken)
	}
	b, _ := repo.Create(ctx, user.User{Name: "B", Email: "b@example.com"})
	if err := repo.UpdateEmail(ctx, b.ID, a.Email); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("unexpected update error: got=%v want=%v", err, user.ErrEmailTaken)
	}
	if err := repo.UpdateEmail(ctx, a.ID, a.Email); err != nil {
		t.Fatalf("updating own email must succeed: %v", err)
	}
}

func TestMatchRepository_UpsertKeepsStoredScore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(NewStore())
	two, one := 2, 1

	_, _ = repo.Upsert(ctx, []match.Match{{ID: 7, Status: "FT", ScoreHome: &two, ScoreAway: &one}})
	_, _ = repo.Upsert(ctx, []match.Match{{ID: 7, Status: "NS"}})

	got, ok, _ := repo.GetByID(ctx, 7)
	if !ok || got.ScoreHome == nil || *got.ScoreHome != 2 || *got.ScoreAway != 1 {
		t.Fatalf("expected stored score to survive upsert, got %+v", got)
	}
}

func TestMatchRepository_ListKickoffBetweenBounds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(NewStore())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, _ = repo.Upsert(ctx, []match.Match{
		{ID: 1, KickoffAt: base},
		{ID: 2, KickoffAt: base.Add(time.Hour)},
		{ID: 3, KickoffAt: base.Add(2 * time.Hour)},
	})

	got, _ := repo.ListKickoffBetween(ctx, base, base.Add(time.Hour))
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected window: %+v", got)
	}
}

func TestPredictionRepository_ApplyMatchResultAndRoundPoints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	matches := NewMatchRepository(store)
	preds := NewPredictionRepository(store)
	liga := match.League{ID: 262, Season: 2025}

	_, _ = matches.Upsert(ctx, []match.Match{
		{ID: 10, League: liga, Round: "R1"},
		{ID: 11, League: liga},
	})
	x, _ := preds.Create(ctx, prediction.Prediction{UserID: 1, MatchID: 10, Home: 2, Away: 1})
	y, _ := preds.Create(ctx, prediction.Prediction{UserID: 2, MatchID: 10, Home: 1, Away: 0})
	_, _ = preds.Create(ctx, prediction.Prediction{UserID: 3, MatchID: 11, Home: 0, Away: 0})

	if _, err := preds.Create(ctx, prediction.Prediction{UserID: 1, MatchID: 10}); !errors.Is(err, prediction.ErrDuplicate) {
		t.Fatalf("unexpected duplicate error: got=%v want=%v", err, prediction.ErrDuplicate)
	}

	count, found, err := preds.ApplyMatchResult(ctx, 10, scoring.Scoreline{Home: 2, Away: 1}, func(items []prediction.Prediction) []scoring.Assignment {
		return scoring.ScoreAll(prediction.Picks(items), scoring.Scoreline{Home: 2, Away: 1})
	})
	if err != nil || !found || count != 2 {
		t.Fatalf("unexpected apply result: count=%d found=%v err=%v", count, found, err)
	}

	gotX, _, _ := preds.GetByID(ctx, x.ID)
	gotY, _, _ := preds.GetByID(ctx, y.ID)
	if gotX.Points != scoring.PointsExact || gotY.Points != scoring.PointsOutcome {
		t.Fatalf("unexpected points: x=%d y=%d", gotX.Points, gotY.Points)
	}

	contribs, _ := preds.ListRoundPoints(ctx, match.AllLeagues(), nil)
	if len(contribs) != 2 {
		t.Fatalf("expected roundless match to be skipped, got %+v", contribs)
	}

	if _, found, _ := preds.ApplyMatchResult(ctx, 99, scoring.Scoreline{}, nil); found {
		t.Fatalf("expected missing match to report not found")
	}
}

func TestGroupAndCompetitionMembership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	groups := NewGroupRepository(store)
	comps := NewCompetitionRepository(store)

	g, err := groups.Create(ctx, group.Group{Name: "Oficina", InviteCode: "abcd1234", CreatorID: 1})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := groups.Create(ctx, group.Group{Name: "Otro", InviteCode: "abcd1234", CreatorID: 2}); !errors.Is(err, group.ErrInviteCodeTaken) {
		t.Fatalf("unexpected code error: got=%v want=%v", err, group.ErrInviteCodeTaken)
	}
	if added, _ := groups.AddMember(ctx, g.ID, 1); added {
		t.Fatalf("creator must already be a member")
	}
	if added, _ := groups.AddMember(ctx, g.ID, 2); !added {
		t.Fatalf("expected new member to be added")
	}

	c, _ := comps.Create(ctx, competition.Competition{Name: "Liga", Code: "zz", CreatorID: 1, Leagues: []match.League{{ID: 262, Season: 2025}}})
	if err := comps.AddMember(ctx, c.ID, 1); !errors.Is(err, competition.ErrAlreadyMember) {
		t.Fatalf("unexpected join error: got=%v want=%v", err, competition.ErrAlreadyMember)
	}
	_ = comps.AddMember(ctx, c.ID, 2)
	counts, _ := comps.CountMembers(ctx, []int64{c.ID})
	if counts[c.ID] != 2 {
		t.Fatalf("unexpected member count: got=%d want=%d", counts[c.ID], 2)
	}
	if err := comps.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := comps.IsMember(ctx, c.ID, 2); ok {
		t.Fatalf("delete must cascade to members")
	}
}

func TestNotificationRepository_MarkSentOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewNotificationRepository(NewStore())
	marker := notification.Marker{UserID: 1, MatchID: 5, Window: notification.WindowOneHour}

	if created, _ := repo.MarkSent(ctx, marker); !created {
		t.Fatalf("expected first mark to create")
	}
	if created, _ := repo.MarkSent(ctx, marker); created {
		t.Fatalf("expected second mark to be a no-op")
	}
	sent, _ := repo.ListSent(ctx, []int64{5}, notification.WindowTwentyFourHour)
	if len(sent) != 0 {
		t.Fatalf("windows must be tracked independently, got %+v", sent)
	}
}

func TestPushSubscriptionRepository_UpsertRefreshesKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPushSubscriptionRepository(NewStore())

	first, _ := repo.Upsert(ctx, pushsubscription.Subscription{UserID: 1, Endpoint: "https://push/1", P256dh: "k1", Auth: "a1"})
	second, _ := repo.Upsert(ctx, pushsubscription.Subscription{UserID: 1, Endpoint: "https://push/1", P256dh: "k2", Auth: "a2"})
	if first.ID != second.ID || second.P256dh != "k2" {
		t.Fatalf("expected upsert on same endpoint, got first=%+v second=%+v", first, second)
	}

	_ = repo.DeleteByEndpoint(ctx, "https://push/1")
	subs, _ := repo.ListByUsers(ctx, []int64{1})
	if len(subs[1]) != 0 {
		t.Fatalf("expected subscription to be removed")
	}
}

func TestPasswordResetRepository_RedeemOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	users := NewUserRepository(store)
	resets := NewPasswordResetRepository(store)

	u, _ := users.Create(ctx, user.User{Email: "x@example.com", PasswordHash: "old"})
	tok, _ := resets.Create(ctx, passwordreset.Token{UserID: u.ID, Token: "t1", ExpiresAt: time.Now().Add(time.Hour)})

	if err := resets.Redeem(ctx, tok.ID, u.ID, "new"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if err := resets.Redeem(ctx, tok.ID, u.ID, "again"); !errors.Is(err, passwordreset.ErrTokenUsed) {
		t.Fatalf("unexpected error: got=%v want=%v", err, passwordreset.ErrTokenUsed)
	}
	got, _, _ := users.GetByID(ctx, u.ID)
	if got.PasswordHash != "new" {
		t.Fatalf("unexpected hash: got=%s want=%s", got.PasswordHash, "new")
	}
}
