package memory

import (
	"sync"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
)

type memberKey struct {
	parentID int64
	userID   int64
}

type markerKey struct {
	userID  int64
	matchID int64
	window  notification.Window
}

type subscriptionKey struct {
	userID   int64
	endpoint string
}

// Store is the shared in-memory database behind every memory repository.
// A single lock gives each repository call the isolation of a transaction.
type Store struct {
	mu sync.RWMutex

	seq int64

	users         map[int64]user.User
	matches       map[int64]match.Match
	predictions   map[int64]prediction.Prediction
	groups        map[int64]group.Group
	groupMembers  map[memberKey]group.Member
	competitions  map[int64]competition.Competition
	compMembers   map[memberKey]competition.Member
	resetTokens   map[int64]passwordreset.Token
	subscriptions map[subscriptionKey]pushsubscription.Subscription
	markers       map[markerKey]notification.Marker
}

func NewStore() *Store {
	return &Store{
		users:         make(map[int64]user.User),
		matches:       make(map[int64]match.Match),
		predictions:   make(map[int64]prediction.Prediction),
		groups:        make(map[int64]group.Group),
		groupMembers:  make(map[memberKey]group.Member),
		competitions:  make(map[int64]competition.Competition),
		compMembers:   make(map[memberKey]competition.Member),
		resetTokens:   make(map[int64]passwordreset.Token),
		subscriptions: make(map[subscriptionKey]pushsubscription.Subscription),
		markers:       make(map[markerKey]notification.Marker),
	}
}

// nextID must be called with the write lock held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func intPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyLeagues(in []match.League) []match.League {
	if len(in) == 0 {
		return nil
	}
	return append([]match.League(nil), in...)
}
