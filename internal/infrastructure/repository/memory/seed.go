package memory

import (
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

var (
	LeagueLigaMX  = match.League{ID: 262, Name: "Liga MX", Logo: "https://media.api-sports.io/football/leagues/262.png", Season: 2025}
	LeaguePremier = match.League{ID: 39, Name: "Premier League", Logo: "https://media.api-sports.io/football/leagues/39.png", Season: 2025}
)

// SeedMatches returns fixtures spread around now so local runs have open,
// started and finished matches.
func SeedMatches(now time.Time) []match.Match {
	now = now.UTC().Truncate(time.Minute)
	final := func(v int) *int { return &v }

	return []match.Match{
		{ID: 1001, HomeTeam: "América", AwayTeam: "Guadalajara", KickoffAt: now.Add(-72 * time.Hour), Status: "FT", ScoreHome: final(2), ScoreAway: final(1), League: LeagueLigaMX, Round: "Regular Season - 1"},
		{ID: 1002, HomeTeam: "Cruz Azul", AwayTeam: "Pumas UNAM", KickoffAt: now.Add(-70 * time.Hour), Status: "FT", ScoreHome: final(0), ScoreAway: final(0), League: LeagueLigaMX, Round: "Regular Season - 1"},
		{ID: 1003, HomeTeam: "Monterrey", AwayTeam: "Tigres UANL", KickoffAt: now.Add(-30 * time.Minute), Status: "1H", League: LeagueLigaMX, Round: "Regular Season - 2"},
		{ID: 1004, HomeTeam: "Toluca", AwayTeam: "León", KickoffAt: now.Add(45 * time.Minute), Status: match.StatusNotStarted, League: LeagueLigaMX, Round: "Regular Season - 2"},
		{ID: 1005, HomeTeam: "Santos Laguna", AwayTeam: "Pachuca", KickoffAt: now.Add(20 * time.Hour), Status: match.StatusNotStarted, League: LeagueLigaMX, Round: "Regular Season - 2"},
		{ID: 2001, HomeTeam: "Arsenal", AwayTeam: "Liverpool", KickoffAt: now.Add(-48 * time.Hour), Status: "FT", ScoreHome: final(1), ScoreAway: final(3), League: LeaguePremier, Round: "Regular Season - 1"},
		{ID: 2002, HomeTeam: "Chelsea", AwayTeam: "Manchester City", KickoffAt: now.Add(3 * 24 * time.Hour), Status: match.StatusNotStarted, League: LeaguePremier, Round: "Regular Season - 2"},
	}
}
