package notification

import "context"

type Repository interface {
	HasSent(ctx context.Context, userID, matchID int64, window Window) (bool, error)
	// ListSent returns the (user, match) pairs already notified for window.
	ListSent(ctx context.Context, matchIDs []int64, window Window) (map[Key]struct{}, error)
	// MarkSent inserts the marker if absent and reports whether this call created it.
	MarkSent(ctx context.Context, marker Marker) (bool, error)
}
