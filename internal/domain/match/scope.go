package match

import (
	"sort"
	"strconv"
)

type LeagueSeason struct {
	LeagueID int64
	Season   int
}

// Scope restricts a cohort to a set of league seasons. The zero value is an
// empty restricted scope that contains nothing; use AllLeagues for no
// restriction.
type Scope struct {
	all     bool
	leagues map[LeagueSeason]struct{}
}

func AllLeagues() Scope {
	return Scope{all: true}
}

func NewScope(leagues ...LeagueSeason) Scope {
	set := make(map[LeagueSeason]struct{}, len(leagues))
	for _, l := range leagues {
		set[l] = struct{}{}
	}
	return Scope{leagues: set}
}

// ScopeOf builds the scope for a cohort's configured leagues. No leagues means
// unrestricted.
func ScopeOf(leagues []League) Scope {
	if len(leagues) == 0 {
		return AllLeagues()
	}
	keys := make([]LeagueSeason, 0, len(leagues))
	for _, l := range leagues {
		keys = append(keys, l.Key())
	}
	return NewScope(keys...)
}

func (s Scope) Unrestricted() bool {
	return s.all
}

func (s Scope) Contains(m Match) bool {
	if s.all {
		return true
	}
	_, ok := s.leagues[m.League.Key()]
	return ok
}

// LeagueSeasons lists the restricted pairs in a stable order.
func (s Scope) LeagueSeasons() []LeagueSeason {
	out := make([]LeagueSeason, 0, len(s.leagues))
	for l := range s.leagues {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeagueID != out[j].LeagueID {
			return out[i].LeagueID < out[j].LeagueID
		}
		return out[i].Season < out[j].Season
	})
	return out
}

// Key is a stable cache key fragment for the scope.
func (s Scope) Key() string {
	if s.all {
		return "all"
	}
	var b []byte
	for i, l := range s.LeagueSeasons() {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, l.LeagueID, 10)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(l.Season), 10)
	}
	if len(b) == 0 {
		return "none"
	}
	return string(b)
}
