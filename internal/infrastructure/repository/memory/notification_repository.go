package memory

import (
	"context"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
)

type NotificationRepository struct {
	s *Store
}

func NewNotificationRepository(s *Store) *NotificationRepository {
	return &NotificationRepository{s: s}
}

func (r *NotificationRepository) HasSent(_ context.Context, userID, matchID int64, window notification.Window) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.markers[markerKey{userID: userID, matchID: matchID, window: window}]
	return ok, nil
}

func (r *NotificationRepository) ListSent(_ context.Context, matchIDs []int64, window notification.Window) (map[notification.Key]struct{}, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(matchIDs))
	for _, id := range matchIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[notification.Key]struct{})
	for key := range r.s.markers {
		if key.window != window {
			continue
		}
		if _, ok := wanted[key.matchID]; ok {
			out[notification.Key{UserID: key.userID, MatchID: key.matchID}] = struct{}{}
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkSent(_ context.Context, marker notification.Marker) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := markerKey{userID: marker.UserID, matchID: marker.MatchID, window: marker.Window}
	if _, ok := r.s.markers[key]; ok {
		return false, nil
	}
	r.s.markers[key] = marker
	return true, nil
}
