package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	competitionmock "github.com/rogeliolopezcamara/quiniela-app/internal/mocks/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newTestCompetitionService(repos memoryRepos) (*CompetitionService, *RankingService) {
	rankings := NewRankingService(repos.users, repos.preds, repos.groups, repos.competitions, cache.NewStore(time.Minute))
	svc := NewCompetitionService(repos.competitions, rankings, &sequenceIDs{}, rankings)
	svc.now = fixedClock
	return svc, rankings
}

func TestCompetitionService_CreateValidatesLeagues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	svc, _ := newTestCompetitionService(repos)
	u := repos.mustUser("ana")

	if _, err := svc.Create(ctx, CreateCompetitionInput{UserID: u.ID, Name: "Sin ligas"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without leagues, got %v", err)
	}
	dup := []match.League{{ID: 262, Season: 2025}, {ID: 262, Season: 2025}}
	if _, err := svc.Create(ctx, CreateCompetitionInput{UserID: u.ID, Name: "Dup", Leagues: dup}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate leagues, got %v", err)
	}

	created, err := svc.Create(ctx, CreateCompetitionInput{UserID: u.ID, Name: "Clausura", IsPublic: true, Leagues: []match.League{{ID: 262, Name: "Liga MX", Season: 2025}}})
	if err != nil {
		t.Fatalf("create competition: %v", err)
	}
	if created.Code == "" || created.CreatorID != u.ID {
		t.Fatalf("unexpected competition: %+v", created)
	}
	if ok, _ := repos.competitions.IsMember(ctx, created.ID, u.ID); !ok {
		t.Fatalf("creator must be a member")
	}

	leagues, _ := svc.ListLeagues(ctx)
	if len(leagues) != 1 || leagues[0].Name != "Liga MX" {
		t.Fatalf("unexpected leagues: %+v", leagues)
	}
	public, _ := svc.ListPublic(ctx)
	if len(public) != 1 {
		t.Fatalf("unexpected public competitions: %+v", public)
	}
}

func TestCompetitionService_JoinTwiceConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	svc, _ := newTestCompetitionService(repos)
	owner := repos.mustUser("ana")
	guest := repos.mustUser("beto")

	comp, _ := svc.Create(ctx, CreateCompetitionInput{UserID: owner.ID, Name: "Clausura", Leagues: []match.League{{ID: 262, Season: 2025}}})

	if _, err := svc.JoinByCode(ctx, guest.ID, " "+comp.Code+" "); err != nil {
		t.Fatalf("join competition: %v", err)
	}
	if _, err := svc.JoinByCode(ctx, guest.ID, comp.Code); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := svc.JoinByCode(ctx, guest.ID, "zzzzzzzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompetitionService_ListMineWithStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	svc, rankings := newTestCompetitionService(repos)
	results := NewMatchResultService(repos.preds, rankings, nil, logging.NewNop())
	owner := repos.mustUser("ana")
	guest := repos.mustUser("beto")

	liga := match.League{ID: 262, Season: 2025}
	repos.mustMatches(match.Match{ID: 1, KickoffAt: testNow.Add(-time.Hour), League: liga, Round: "R1"})
	comp, _ := svc.Create(ctx, CreateCompetitionInput{UserID: owner.ID, Name: "Clausura", Leagues: []match.League{liga}})
	_, _ = svc.JoinByCode(ctx, guest.ID, comp.Code)

	_, _ = repos.preds.Create(ctx, prediction.Prediction{UserID: owner.ID, MatchID: 1, Home: 0, Away: 1})
	_, _ = repos.preds.Create(ctx, prediction.Prediction{UserID: guest.ID, MatchID: 1, Home: 2, Away: 0})
	if _, err := results.ApplyResult(ctx, 1, 2, 0); err != nil {
		t.Fatalf("apply result: %v", err)
	}

	stats, err := svc.ListMineWithStats(ctx, guest.ID)
	if err != nil {
		t.Fatalf("list with stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("unexpected stats rows: %+v", stats)
	}
	row := stats[0]
	if row.MemberCount != 2 || row.MyRanking != 1 || row.MyPoints != 3 || row.IsCreator {
		t.Fatalf("unexpected stats row: %+v", row)
	}
}

func TestCompetitionService_DeleteOnlyByCreator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	svc, _ := newTestCompetitionService(repos)
	owner := repos.mustUser("ana")
	guest := repos.mustUser("beto")

	comp, _ := svc.Create(ctx, CreateCompetitionInput{UserID: owner.ID, Name: "Clausura", Leagues: []match.League{{ID: 262, Season: 2025}}})
	_, _ = svc.JoinByCode(ctx, guest.ID, comp.Code)

	if err := svc.Delete(ctx, guest.ID, comp.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, owner.ID, comp.ID); err != nil {
		t.Fatalf("delete competition: %v", err)
	}
	if _, found, _ := repos.competitions.GetByID(ctx, comp.ID); found {
		t.Fatalf("competition must be gone")
	}
	if err := svc.Delete(ctx, owner.ID, comp.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCompetitionService_DeleteOnlyByCreatorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	comps := competitionmock.NewRepository(t)
	inv := &recordingInvalidator{}
	svc := NewCompetitionService(comps, nil, &sequenceIDs{}, inv)

	comps.
		On("GetByID", mock.Anything, int64(21)).
		Return(competition.Competition{ID: 21, Name: "Mundial", CreatorID: 1}, true, nil).
		Twice()
	comps.
		On("Delete", mock.Anything, int64(21)).
		Return(nil).
		Once()

	if err := svc.Delete(ctx, 2, 21); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrForbidden)
	}
	if err := svc.Delete(ctx, 1, 21); err != nil {
		t.Fatalf("delete competition: %v", err)
	}
	if inv.calls != 1 {
		t.Fatalf("unexpected invalidations: got=%d want=%d", inv.calls, 1)
	}
}
