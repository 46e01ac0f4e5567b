package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
	predictionmock "github.com/rogeliolopezcamara/quiniela-app/internal/mocks/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestMatchResultService_ApplyResultScoresPredictions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newMemoryRepos()
	metrics := newRecordingMetrics()
	inv := &recordingInvalidator{}
	svc := NewMatchResultService(repos.preds, inv, metrics, logging.NewNop())

	repos.mustMatches(match.Match{ID: 7, KickoffAt: testNow.Add(-2 * time.Hour), Round: "R1"})
	picks := []scoring.Scoreline{{Home: 2, Away: 1}, {Home: 1, Away: 0}, {Home: 1, Away: 1}, {Home: 0, Away: 2}}
	ids := make([]int64, 0, len(picks))
	for i, pick := range picks {
		u := repos.mustUser(string(rune('a' + i)))
		p, err := repos.preds.Create(ctx, prediction.Prediction{UserID: u.ID, MatchID: 7, Home: pick.Home, Away: pick.Away})
		if err != nil {
			t.Fatalf("seed prediction: %v", err)
		}
		ids = append(ids, p.ID)
	}

	for run := 0; run < 2; run++ {
		count, err := svc.ApplyResult(ctx, 7, 2, 1)
		if err != nil {
			t.Fatalf("apply result: %v", err)
		}
		if count != 4 {
			t.Fatalf("unexpected rescored count: got=%d want=%d", count, 4)
		}
	}

	want := []int{3, 1, 0, 0}
	for i, id := range ids {
		p, _, _ := repos.preds.GetByID(ctx, id)
		if p.Points != want[i] {
			t.Fatalf("prediction %d: unexpected points: got=%d want=%d", i, p.Points, want[i])
		}
	}

	m, _, _ := repos.matches.GetByID(ctx, 7)
	if !m.HasFinalScore() || *m.ScoreHome != 2 || *m.ScoreAway != 1 {
		t.Fatalf("expected final score to be stored, got %+v", m)
	}
	if metrics.rescored != 8 || inv.calls != 2 {
		t.Fatalf("unexpected side effects: rescored=%d invalidations=%d", metrics.rescored, inv.calls)
	}
}

func TestMatchResultService_ApplyResultErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewMatchResultService(newMemoryRepos().preds, nil, nil, nil)

	if _, err := svc.ApplyResult(ctx, 7, -1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.ApplyResult(ctx, 404, 1, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchResultService_ApplyResultRepositoryFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predRepo := predictionmock.NewRepository(t)
	inv := &recordingInvalidator{}
	svc := NewMatchResultService(predRepo, inv, nil, logging.NewNop())

	predRepo.
		On("ApplyMatchResult", mock.Anything, int64(7), scoring.Scoreline{Home: 1, Away: 0}, mock.Anything).
		Return(0, false, errors.New("deadlock detected")).
		Once()

	if _, err := svc.ApplyResult(ctx, 7, 1, 0); err == nil {
		t.Fatalf("expected repository error to surface")
	}
	if inv.calls != 0 {
		t.Fatalf("rankings must not be invalidated when the transaction failed")
	}
}
