package prediction

import (
	"errors"
	"testing"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

func TestValidateGoals(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ home, away int }{{-1, 0}, {0, -1}, {100, 0}, {0, 100}} {
		if err := ValidateGoals(tc.home, tc.away); !errors.Is(err, ErrGoalsRange) {
			t.Fatalf("expected range error for %d-%d, got %v", tc.home, tc.away, err)
		}
	}
	if err := ValidateGoals(0, 99); err != nil {
		t.Fatalf("unexpected error for boundary scoreline: %v", err)
	}
}

func TestCanEdit(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 11, 12, 0, 0, 0, time.UTC)
	p := Prediction{ID: 1, UserID: 7, MatchID: 3}
	future := match.Match{ID: 3, KickoffAt: now.Add(time.Minute)}

	if err := CanEdit(p, future, 7, now); err != nil {
		t.Fatalf("owner before kickoff must edit: %v", err)
	}
	if err := CanEdit(p, future, 8, now); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	atKickoff := match.Match{ID: 3, KickoffAt: now}
	if err := CanEdit(p, atKickoff, 7, now); !errors.Is(err, ErrKickoffPassed) {
		t.Fatalf("expected ErrKickoffPassed at kickoff, got %v", err)
	}
}

func TestPicks(t *testing.T) {
	t.Parallel()

	picks := Picks([]Prediction{{ID: 4, Home: 2, Away: 1}})
	if len(picks) != 1 || picks[0].PredictionID != 4 || picks[0].Home != 2 || picks[0].Away != 1 {
		t.Fatalf("unexpected picks: %+v", picks)
	}
}
