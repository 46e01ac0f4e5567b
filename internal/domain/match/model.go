package match

import (
	"strings"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
)

const (
	StatusNotStarted = "NS"
	StatusFinished   = "FT"
)

// League identifies a competition season as reported by the fixture provider.
type League struct {
	ID     int64
	Name   string
	Logo   string
	Season int
}

func (l League) Key() LeagueSeason {
	return LeagueSeason{LeagueID: l.ID, Season: l.Season}
}

// Match is a fixture. ID is the provider fixture id.
type Match struct {
	ID           int64
	HomeTeam     string
	AwayTeam     string
	HomeTeamLogo string
	AwayTeamLogo string
	KickoffAt    time.Time
	Status       string
	ScoreHome    *int
	ScoreAway    *int
	League       League
	Round        string
}

func (m Match) Result() scoring.Result {
	return scoring.Result{Home: m.ScoreHome, Away: m.ScoreAway}
}

func (m Match) HasFinalScore() bool {
	_, ok := m.Result().Final()
	return ok
}

// Started reports whether kickoff is at or before now.
func (m Match) Started(now time.Time) bool {
	return !m.KickoffAt.After(now)
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusNotStarted
	}
	return status
}

// IsFinalStatus reports provider short statuses that carry a final score.
func IsFinalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}
