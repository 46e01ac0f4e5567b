package competition

import (
	"errors"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

const CodeLength = 8

var (
	ErrCodeTaken     = errors.New("competition code already in use")
	ErrAlreadyMember = errors.New("already joined")
	ErrNoLeagues     = errors.New("competition needs at least one league")
)

type Competition struct {
	ID        int64
	Name      string
	Code      string
	IsPublic  bool
	CreatorID int64
	CreatedAt time.Time
	Leagues   []match.League
}

func (c Competition) Scope() match.Scope {
	return match.ScopeOf(c.Leagues)
}

func (c Competition) IsCreator(userID int64) bool {
	return c.CreatorID == userID
}

type Member struct {
	UserID   int64
	Name     string
	Email    string
	JoinedAt time.Time
}

// Validate checks creation input. Leagues must be non-empty and unique per
// (league, season).
func Validate(c Competition) error {
	if len(c.Leagues) == 0 {
		return ErrNoLeagues
	}
	seen := make(map[match.LeagueSeason]struct{}, len(c.Leagues))
	for _, l := range c.Leagues {
		if l.ID <= 0 || l.Season <= 0 {
			return errors.New("league id and season must be positive")
		}
		if _, dup := seen[l.Key()]; dup {
			return errors.New("duplicate league season")
		}
		seen[l.Key()] = struct{}{}
	}
	return nil
}
