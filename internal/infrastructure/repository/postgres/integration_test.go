package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/rogeliolopezcamara/quiniela-app/db"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	var (
		container *tcpostgres.PostgresContainer
		err       error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("docker unavailable: %v", r)
			}
		}()
		container, err = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("quiniela"),
			tcpostgres.WithUsername("quiniela"),
			tcpostgres.WithPassword("quiniela"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		t.Fatalf("open embedded migrations: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		t.Fatalf("create migrator: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("apply migrations: %v", err)
	}
	_, _ = m.Close()

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRepositories_Integration(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(conn)
	matches := NewMatchRepository(conn)
	preds := NewPredictionRepository(conn)
	groups := NewGroupRepository(conn)
	comps := NewCompetitionRepository(conn)
	resets := NewPasswordResetRepository(conn)
	pushes := NewPushSubscriptionRepository(conn)
	markers := NewNotificationRepository(conn)

	ana, err := users.Create(ctx, user.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	beto, err := users.Create(ctx, user.User{Name: "Beto", Email: "beto@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.Create(ctx, user.User{Name: "Dup", Email: "ana@example.com", PasswordHash: "h"}); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	liga := match.League{ID: 262, Name: "Liga MX", Season: 2025}
	kickoff := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	n, err := matches.Upsert(ctx, []match.Match{
		{ID: 1, HomeTeam: "América", AwayTeam: "Chivas", KickoffAt: kickoff, Status: "NS", League: liga, Round: "Regular Season - 1"},
		{ID: 2, HomeTeam: "Tigres", AwayTeam: "Monterrey", KickoffAt: kickoff.Add(time.Hour), Status: "NS", League: liga, Round: "Regular Season - 1"},
	})
	if err != nil || n != 2 {
		t.Fatalf("upsert matches: n=%d err=%v", n, err)
	}

	t.Run("prediction lifecycle and rescore", func(t *testing.T) {
		p1, err := preds.Create(ctx, prediction.Prediction{UserID: ana.ID, MatchID: 1, Home: 2, Away: 1})
		if err != nil {
			t.Fatalf("create prediction: %v", err)
		}
		if _, err := preds.Create(ctx, prediction.Prediction{UserID: ana.ID, MatchID: 1, Home: 0, Away: 0}); !errors.Is(err, prediction.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		if _, err := preds.Create(ctx, prediction.Prediction{UserID: beto.ID, MatchID: 1, Home: 1, Away: 0}); err != nil {
			t.Fatalf("create prediction: %v", err)
		}

		final := scoring.Scoreline{Home: 2, Away: 1}
		rescore := func(items []prediction.Prediction) []scoring.Assignment {
			return scoring.ScoreAll(prediction.Picks(items), final)
		}
		count, found, err := preds.ApplyMatchResult(ctx, 1, final, rescore)
		if err != nil || !found || count != 2 {
			t.Fatalf("apply result: count=%d found=%v err=%v", count, found, err)
		}
		if _, found, err := preds.ApplyMatchResult(ctx, 999, final, rescore); err != nil || found {
			t.Fatalf("expected missing match, found=%v err=%v", found, err)
		}

		got, _, err := preds.GetByID(ctx, p1.ID)
		if err != nil || got.Points != scoring.PointsExact {
			t.Fatalf("unexpected points: got=%d err=%v", got.Points, err)
		}
		total, err := preds.SumPointsByUser(ctx, beto.ID)
		if err != nil || total != scoring.PointsOutcome {
			t.Fatalf("unexpected total: got=%d err=%v", total, err)
		}

		contribs, err := preds.ListRoundPoints(ctx, match.NewScope(liga.Key()), nil)
		if err != nil {
			t.Fatalf("list round points: %v", err)
		}
		if len(contribs) != 2 {
			t.Fatalf("unexpected contributions: %+v", contribs)
		}
		none, err := preds.ListRoundPoints(ctx, match.NewScope(match.LeagueSeason{LeagueID: 39, Season: 2025}), nil)
		if err != nil || len(none) != 0 {
			t.Fatalf("expected no contributions outside scope, got=%+v err=%v", none, err)
		}

		listed, err := preds.ListByUser(ctx, ana.ID)
		if err != nil || len(listed) != 1 || listed[0].Match.HomeTeam != "América" {
			t.Fatalf("unexpected listing: %+v err=%v", listed, err)
		}
		stored, _, err := matches.GetByID(ctx, 1)
		if err != nil {
			t.Fatalf("get match: %v", err)
		}
		if fs, ok := stored.Result().Final(); !ok || fs != final {
			t.Fatalf("unexpected stored score: %+v", stored)
		}

		// A later upsert without a score keeps the stored one.
		if _, err := matches.Upsert(ctx, []match.Match{{ID: 1, HomeTeam: "América", AwayTeam: "Chivas", KickoffAt: kickoff, Status: "FT", League: liga}}); err != nil {
			t.Fatalf("re-upsert: %v", err)
		}
		stored, _, _ = matches.GetByID(ctx, 1)
		if stored.ScoreHome == nil || *stored.ScoreHome != 2 {
			t.Fatalf("expected score to be kept, got %+v", stored)
		}
	})

	t.Run("concurrent duplicate predictions", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = preds.Create(ctx, prediction.Prediction{UserID: beto.ID, MatchID: 2, Home: i, Away: 0})
			}(i)
		}
		wg.Wait()
		ok := 0
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case !errors.Is(err, prediction.ErrDuplicate):
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if ok != 1 {
			t.Fatalf("unexpected successful creates: got=%d want=1", ok)
		}
	})

	t.Run("groups and competitions", func(t *testing.T) {
		g, err := groups.Create(ctx, group.Group{Name: "Oficina", InviteCode: "ABC12345", CreatorID: ana.ID, Leagues: []match.League{liga}})
		if err != nil {
			t.Fatalf("create group: %v", err)
		}
		if _, err := groups.Create(ctx, group.Group{Name: "Otra", InviteCode: "ABC12345", CreatorID: beto.ID}); !errors.Is(err, group.ErrInviteCodeTaken) {
			t.Fatalf("expected ErrInviteCodeTaken, got %v", err)
		}
		added, err := groups.AddMember(ctx, g.ID, beto.ID)
		if err != nil || !added {
			t.Fatalf("add member: added=%v err=%v", added, err)
		}
		added, err = groups.AddMember(ctx, g.ID, beto.ID)
		if err != nil || added {
			t.Fatalf("expected idempotent join: added=%v err=%v", added, err)
		}
		members, err := groups.ListMembers(ctx, g.ID)
		if err != nil || len(members) != 2 || members[0].UserID != ana.ID {
			t.Fatalf("unexpected members: %+v err=%v", members, err)
		}
		loaded, found, err := groups.GetByInviteCode(ctx, "ABC12345")
		if err != nil || !found || len(loaded.Leagues) != 1 {
			t.Fatalf("unexpected group: %+v found=%v err=%v", loaded, found, err)
		}

		c, err := comps.Create(ctx, competition.Competition{Name: "Apertura", Code: "COMP0001", IsPublic: true, CreatorID: ana.ID, Leagues: []match.League{liga}})
		if err != nil {
			t.Fatalf("create competition: %v", err)
		}
		if err := comps.AddMember(ctx, c.ID, beto.ID); err != nil {
			t.Fatalf("join competition: %v", err)
		}
		if err := comps.AddMember(ctx, c.ID, beto.ID); !errors.Is(err, competition.ErrAlreadyMember) {
			t.Fatalf("expected ErrAlreadyMember, got %v", err)
		}
		counts, err := comps.CountMembers(ctx, []int64{c.ID})
		if err != nil || counts[c.ID] != 2 {
			t.Fatalf("unexpected counts: %v err=%v", counts, err)
		}
		leagues, err := comps.ListLeagues(ctx)
		if err != nil || len(leagues) != 1 || leagues[0].ID != liga.ID {
			t.Fatalf("unexpected leagues: %+v err=%v", leagues, err)
		}
		if err := comps.Delete(ctx, c.ID); err != nil {
			t.Fatalf("delete competition: %v", err)
		}
		if member, err := comps.IsMember(ctx, c.ID, beto.ID); err != nil || member {
			t.Fatalf("expected memberships to cascade: member=%v err=%v", member, err)
		}
	})

	t.Run("password reset redeem once", func(t *testing.T) {
		tok, err := resets.Create(ctx, passwordreset.Token{UserID: ana.ID, Token: "reset-token", ExpiresAt: time.Now().Add(time.Hour)})
		if err != nil {
			t.Fatalf("create token: %v", err)
		}
		if err := resets.Redeem(ctx, tok.ID, ana.ID, "new-hash"); err != nil {
			t.Fatalf("redeem: %v", err)
		}
		if err := resets.Redeem(ctx, tok.ID, ana.ID, "other-hash"); !errors.Is(err, passwordreset.ErrTokenUsed) {
			t.Fatalf("expected ErrTokenUsed, got %v", err)
		}
		u, _, _ := users.GetByID(ctx, ana.ID)
		if u.PasswordHash != "new-hash" {
			t.Fatalf("unexpected hash: %q", u.PasswordHash)
		}
	})

	t.Run("push subscriptions and markers", func(t *testing.T) {
		first, err := pushes.Upsert(ctx, pushsubscription.Subscription{UserID: ana.ID, Endpoint: "https://push.example/1", P256dh: "k1", Auth: "a1"})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		second, err := pushes.Upsert(ctx, pushsubscription.Subscription{UserID: ana.ID, Endpoint: "https://push.example/1", P256dh: "k2", Auth: "a2"})
		if err != nil || second.ID != first.ID || second.P256dh != "k2" {
			t.Fatalf("expected refreshed row: %+v err=%v", second, err)
		}
		if err := pushes.DeleteByEndpoint(ctx, "https://push.example/1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		subs, err := pushes.ListByUsers(ctx, []int64{ana.ID})
		if err != nil || len(subs[ana.ID]) != 0 {
			t.Fatalf("expected no subscriptions, got %+v err=%v", subs, err)
		}

		marker := notification.Marker{UserID: ana.ID, MatchID: 2, Window: notification.WindowOneHour}
		created, err := markers.MarkSent(ctx, marker)
		if err != nil || !created {
			t.Fatalf("mark sent: created=%v err=%v", created, err)
		}
		created, err = markers.MarkSent(ctx, marker)
		if err != nil || created {
			t.Fatalf("expected marker to exist: created=%v err=%v", created, err)
		}
		sent, err := markers.ListSent(ctx, []int64{2}, notification.WindowOneHour)
		if err != nil || len(sent) != 1 {
			t.Fatalf("unexpected sent markers: %v err=%v", sent, err)
		}
	})
}
