package match

import (
	"sort"
	"time"
)

// FilterAvailable keeps matches a user can still predict: kickoff strictly
// after now, inside scope and not already predicted. The result is ordered by
// kickoff then id.
func FilterAvailable(matches []Match, now time.Time, predicted map[int64]struct{}, scope Scope) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if !m.KickoffAt.After(now) {
			continue
		}
		if !scope.Contains(m) {
			continue
		}
		if _, done := predicted[m.ID]; done {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
