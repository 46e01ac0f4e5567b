package user

import (
	"errors"
	"time"
)

var ErrEmailTaken = errors.New("email already registered")

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal is the authenticated caller resolved from an access token.
type Principal struct {
	UserID int64
	Email  string
}
