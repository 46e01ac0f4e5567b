package apisports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

type fixturesEnvelope struct {
	// Errors is [] on success and an object keyed by field on failure.
	Errors   any           `json:"errors"`
	Results  int           `json:"results"`
	Response []fixtureItem `json:"response"`
}

func (e fixturesEnvelope) errorMessage() string {
	switch v := e.Errors.(type) {
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, v[k]))
		}
		return strings.Join(parts, "; ")
	case []any:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprint(v...)
	default:
		return ""
	}
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Logo   string `json:"logo"`
		Season int    `json:"season"`
		Round  string `json:"round"`
	} `json:"league"`
	Teams struct {
		Home teamItem `json:"home"`
		Away teamItem `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type teamItem struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// toDomain keeps provider goals as-is; the sync service decides whether the
// status makes them a final score.
func (f fixtureItem) toDomain() (match.Match, bool) {
	if f.Fixture.ID <= 0 {
		return match.Match{}, false
	}
	kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(f.Fixture.Date))
	if err != nil {
		return match.Match{}, false
	}
	return match.Match{
		ID:           f.Fixture.ID,
		HomeTeam:     strings.TrimSpace(f.Teams.Home.Name),
		AwayTeam:     strings.TrimSpace(f.Teams.Away.Name),
		HomeTeamLogo: strings.TrimSpace(f.Teams.Home.Logo),
		AwayTeamLogo: strings.TrimSpace(f.Teams.Away.Logo),
		KickoffAt:    kickoff.UTC(),
		Status:       match.NormalizeStatus(f.Fixture.Status.Short),
		ScoreHome:    f.Goals.Home,
		ScoreAway:    f.Goals.Away,
		League: match.League{
			ID:     f.League.ID,
			Name:   strings.TrimSpace(f.League.Name),
			Logo:   strings.TrimSpace(f.League.Logo),
			Season: f.League.Season,
		},
		Round: strings.TrimSpace(f.League.Round),
	}, true
}
