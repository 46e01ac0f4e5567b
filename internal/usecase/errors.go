package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrSubscriptionGone is returned by a PushSender when the push service
	// reports the subscription no longer exists.
	ErrSubscriptionGone = errors.New("push subscription gone")
)
