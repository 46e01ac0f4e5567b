package scoring

func Outcome(home, away int) OutcomeClass {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// Score awards PointsExact for the exact scoreline, PointsOutcome when only
// the outcome class matches and PointsMiss otherwise.
func Score(pred, final Scoreline) int {
	if pred == final {
		return PointsExact
	}
	if Outcome(pred.Home, pred.Away) == Outcome(final.Home, final.Away) {
		return PointsOutcome
	}
	return PointsMiss
}

// ScoreAll computes the full batch before anything is written so callers can
// persist it atomically. Output order follows picks.
func ScoreAll(picks []Pick, final Scoreline) []Assignment {
	out := make([]Assignment, 0, len(picks))
	for _, p := range picks {
		out = append(out, Assignment{PredictionID: p.PredictionID, Points: Score(p.Scoreline, final)})
	}
	return out
}
