package prediction

import (
	"errors"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
)

const MaxGoals = 99

var (
	ErrDuplicate     = errors.New("prediction already exists for this match")
	ErrKickoffPassed = errors.New("match already started")
	ErrNotOwner      = errors.New("prediction belongs to another user")
	ErrGoalsRange    = errors.New("goals must be between 0 and 99")
)

// Prediction is one user's scoreline for one match. Points stay 0 until the
// match has a final score.
type Prediction struct {
	ID        int64
	UserID    int64
	MatchID   int64
	Home      int
	Away      int
	Points    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Prediction) Pick() scoring.Pick {
	return scoring.Pick{PredictionID: p.ID, Scoreline: scoring.Scoreline{Home: p.Home, Away: p.Away}}
}

// WithMatch pairs a prediction with its fixture for listings.
type WithMatch struct {
	Prediction
	Match match.Match
}

// ValidateGoals checks a predicted scoreline is within range.
func ValidateGoals(home, away int) error {
	if home < 0 || away < 0 || home > MaxGoals || away > MaxGoals {
		return ErrGoalsRange
	}
	return nil
}

// CanEdit enforces ownership and the kickoff lock.
func CanEdit(p Prediction, m match.Match, userID int64, now time.Time) error {
	if p.UserID != userID {
		return ErrNotOwner
	}
	if m.Started(now) {
		return ErrKickoffPassed
	}
	return nil
}

// Picks reduces predictions to scoring input.
func Picks(preds []Prediction) []scoring.Pick {
	out := make([]scoring.Pick, 0, len(preds))
	for _, p := range preds {
		out = append(out, p.Pick())
	}
	return out
}
