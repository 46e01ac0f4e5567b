package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/ranking"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
)

type rankingFixture struct {
	repos   memoryRepos
	ranking *RankingService
	results *MatchResultService
	x, y, z user.User
}

// newRankingFixture seeds two rounds of Liga MX and one Premier League match:
// x scores 3+1, y scores 1+3, z only predicts the Premier League match.
func newRankingFixture(t *testing.T) rankingFixture {
	t.Helper()

	ctx := context.Background()
	repos := newMemoryRepos()
	rankings := NewRankingService(repos.users, repos.preds, repos.groups, repos.competitions, cache.NewStore(time.Minute))
	results := NewMatchResultService(repos.preds, rankings, nil, logging.NewNop())

	liga := match.League{ID: 262, Season: 2025}
	premier := match.League{ID: 39, Season: 2025}
	past := testNow.Add(-24 * time.Hour)
	repos.mustMatches(
		match.Match{ID: 1, KickoffAt: past, League: liga, Round: "Regular Season - 1"},
		match.Match{ID: 2, KickoffAt: past, League: liga, Round: "Regular Season - 2"},
		match.Match{ID: 3, KickoffAt: past, League: premier, Round: "Regular Season - 10"},
	)

	f := rankingFixture{repos: repos, ranking: rankings, results: results}
	f.x = repos.mustUser("x")
	f.y = repos.mustUser("y")
	f.z = repos.mustUser("z")

	seed := []prediction.Prediction{
		{UserID: f.x.ID, MatchID: 1, Home: 2, Away: 0},
		{UserID: f.x.ID, MatchID: 2, Home: 1, Away: 0},
		{UserID: f.y.ID, MatchID: 1, Home: 1, Away: 0},
		{UserID: f.y.ID, MatchID: 2, Home: 3, Away: 1},
		{UserID: f.z.ID, MatchID: 3, Home: 0, Away: 0},
	}
	for _, p := range seed {
		if _, err := repos.preds.Create(ctx, p); err != nil {
			t.Fatalf("seed prediction: %v", err)
		}
	}
	if _, err := results.ApplyResult(ctx, 1, 2, 0); err != nil {
		t.Fatalf("apply result 1: %v", err)
	}
	if _, err := results.ApplyResult(ctx, 2, 3, 1); err != nil {
		t.Fatalf("apply result 2: %v", err)
	}
	return f
}

func TestRankingService_GlobalTieBreaksByUserID(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	table, err := f.ranking.Global(context.Background(), "")
	if err != nil {
		t.Fatalf("global ranking: %v", err)
	}
	if len(table.Entries) != 3 {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(table.Entries), 3)
	}
	first, second, third := table.Entries[0], table.Entries[1], table.Entries[2]
	if first.UserID != f.x.ID || first.Total != 4 || first.Position != 1 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if second.UserID != f.y.ID || second.Total != 4 || second.Position != 2 {
		t.Fatalf("unexpected second entry: %+v", second)
	}
	if third.UserID != f.z.ID || third.Total != 0 {
		t.Fatalf("unexpected third entry: %+v", third)
	}
	if len(table.Rounds) != 3 || table.Rounds[2] != "Regular Season - 10" {
		t.Fatalf("expected naturally sorted rounds, got %v", table.Rounds)
	}
	if first.Rounds["Regular Season - 10"] != 0 {
		t.Fatalf("missing rounds must be zero-filled")
	}
}

func TestRankingService_RoundFilter(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	table, err := f.ranking.Global(context.Background(), "Regular Season - 2")
	if err != nil {
		t.Fatalf("global ranking: %v", err)
	}
	if table.Entries[0].UserID != f.y.ID || table.Entries[0].Total != 3 {
		t.Fatalf("unexpected round leader: %+v", table.Entries[0])
	}
}

func TestRankingService_GroupScopeAndMembership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newRankingFixture(t)
	g, err := f.repos.groups.Create(ctx, group.Group{
		Name:       "Liga MX",
		InviteCode: "liga0001",
		CreatorID:  f.x.ID,
		Leagues:    []match.League{{ID: 39, Season: 2025}},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	_, _ = f.repos.groups.AddMember(ctx, g.ID, f.z.ID)

	table, err := f.ranking.Group(ctx, f.x.ID, g.ID, "")
	if err != nil {
		t.Fatalf("group ranking: %v", err)
	}
	if len(table.Entries) != 2 {
		t.Fatalf("expected members only, got %+v", table.Entries)
	}
	for _, e := range table.Entries {
		if e.Total != 0 {
			t.Fatalf("liga mx points must not count in a premier-only group: %+v", e)
		}
	}

	if _, err := f.ranking.Group(ctx, f.y.ID, g.ID, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-member, got %v", err)
	}
	if _, err := f.ranking.Group(ctx, f.x.ID, 9999, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRankingService_InvalidatedAfterResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newRankingFixture(t)

	before, _ := f.ranking.Global(ctx, "")
	if before.Entries[0].UserID != f.x.ID {
		t.Fatalf("unexpected leader before result: %+v", before.Entries[0])
	}

	if _, err := f.results.ApplyResult(ctx, 3, 0, 0); err != nil {
		t.Fatalf("apply result: %v", err)
	}
	after, _ := f.ranking.Global(ctx, "")
	entry, ok := ranking.EntryOf(after, f.z.ID)
	if !ok || entry.Total != 3 {
		t.Fatalf("expected cached table to be refreshed, got %+v", after.Entries)
	}
}

// pausingPredictions holds the first ListRoundPoints call after it has read,
// until release is closed.
type pausingPredictions struct {
	prediction.Repository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (p *pausingPredictions) ListRoundPoints(ctx context.Context, scope match.Scope, userIDs []int64) ([]ranking.Contribution, error) {
	out, err := p.Repository.ListRoundPoints(ctx, scope, userIDs)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return out, err
}

func TestRankingService_ResultDuringLoadIsNotServedStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	preds := &pausingPredictions{Repository: repos.preds, read: make(chan struct{}), release: make(chan struct{})}
	rankings := NewRankingService(repos.users, preds, repos.groups, repos.competitions, cache.NewStore(time.Minute))
	results := NewMatchResultService(repos.preds, rankings, nil, logging.NewNop())

	u := repos.mustUser("ana")
	repos.mustMatches(match.Match{ID: 100, KickoffAt: testNow.Add(-3 * time.Hour), League: match.League{ID: 262, Season: 2025}, Round: "R1"})
	if _, err := repos.preds.Create(ctx, prediction.Prediction{UserID: u.ID, MatchID: 100, Home: 2, Away: 1}); err != nil {
		t.Fatalf("seed prediction: %v", err)
	}

	loaded := make(chan error, 1)
	go func() {
		_, err := rankings.Global(ctx, "")
		loaded <- err
	}()

	<-preds.read
	if _, err := results.ApplyResult(ctx, 100, 2, 1); err != nil {
		t.Fatalf("apply result: %v", err)
	}
	close(preds.release)
	if err := <-loaded; err != nil {
		t.Fatalf("in-flight global ranking: %v", err)
	}

	table, err := rankings.Global(ctx, "")
	if err != nil {
		t.Fatalf("global ranking: %v", err)
	}
	entry, ok := ranking.EntryOf(table, u.ID)
	if !ok || entry.Total != 3 {
		t.Fatalf("unexpected ranking after result: got=%+v want total=3", table.Entries)
	}
}
