package notification

import "time"

type Window string

const (
	WindowOneHour        Window = "1h"
	WindowTwentyFourHour Window = "24h"
)

// Horizon is the furthest kickoff a notification run looks at.
const Horizon = 24 * time.Hour

// Marker records a successful reminder for (user, match, window).
type Marker struct {
	UserID  int64
	MatchID int64
	Window  Window
	SentAt  time.Time
}

type Key struct {
	UserID  int64
	MatchID int64
}

// Classify returns the reminder window for a kickoff, or false when the match
// has started or is more than a day away.
func Classify(now, kickoff time.Time) (Window, bool) {
	until := kickoff.Sub(now)
	switch {
	case until <= 0:
		return "", false
	case until <= time.Hour:
		return WindowOneHour, true
	case until <= Horizon:
		return WindowTwentyFourHour, true
	default:
		return "", false
	}
}

func (w Window) Valid() bool {
	return w == WindowOneHour || w == WindowTwentyFourHour
}
