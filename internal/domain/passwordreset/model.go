package passwordreset

import (
	"errors"
	"time"
)

var ErrTokenUsed = errors.New("token already used")

type Token struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
