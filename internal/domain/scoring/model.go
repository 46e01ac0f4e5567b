package scoring

import "errors"

const (
	PointsExact   = 3
	PointsOutcome = 1
	PointsMiss    = 0
)

var ErrResultNotFinal = errors.New("match result is not final")

type OutcomeClass string

const (
	HomeWin OutcomeClass = "HOME_WIN"
	AwayWin OutcomeClass = "AWAY_WIN"
	Draw    OutcomeClass = "DRAW"
)

// Scoreline is a home/away goal pair, either predicted or final.
type Scoreline struct {
	Home int
	Away int
}

// Result holds a possibly incomplete final score as stored on a match.
type Result struct {
	Home *int
	Away *int
}

// Final reports the scoreline only when both sides are present.
func (r Result) Final() (Scoreline, bool) {
	if r.Home == nil || r.Away == nil {
		return Scoreline{}, false
	}
	return Scoreline{Home: *r.Home, Away: *r.Away}, true
}

// Pick is a prediction reduced to what scoring needs.
type Pick struct {
	PredictionID int64
	Scoreline
}

type Assignment struct {
	PredictionID int64
	Points       int
}
