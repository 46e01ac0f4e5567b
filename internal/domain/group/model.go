package group

import (
	"errors"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

var ErrInviteCodeTaken = errors.New("invite code already in use")

// Group is a private cohort joined with an invite code. An empty Leagues list
// means every league counts toward the group ranking.
type Group struct {
	ID         int64
	Name       string
	InviteCode string
	CreatorID  int64
	CreatedAt  time.Time
	Leagues    []match.League
}

func (g Group) Scope() match.Scope {
	return match.ScopeOf(g.Leagues)
}

type Member struct {
	UserID   int64
	Name     string
	Email    string
	JoinedAt time.Time
}
