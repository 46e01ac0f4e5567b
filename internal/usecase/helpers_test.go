package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/repository/memory"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/password"
)

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func intRef(v int) *int { return &v }

// memoryRepos bundles the in-memory repositories over one shared store.
type memoryRepos struct {
	users        *memory.UserRepository
	matches      *memory.MatchRepository
	preds        *memory.PredictionRepository
	groups       *memory.GroupRepository
	competitions *memory.CompetitionRepository
	markers      *memory.NotificationRepository
	subs         *memory.PushSubscriptionRepository
	resets       *memory.PasswordResetRepository
}

func newMemoryRepos() memoryRepos {
	store := memory.NewStore()
	return memoryRepos{
		users:        memory.NewUserRepository(store),
		matches:      memory.NewMatchRepository(store),
		preds:        memory.NewPredictionRepository(store),
		groups:       memory.NewGroupRepository(store),
		competitions: memory.NewCompetitionRepository(store),
		markers:      memory.NewNotificationRepository(store),
		subs:         memory.NewPushSubscriptionRepository(store),
		resets:       memory.NewPasswordResetRepository(store),
	}
}

func (r memoryRepos) mustUser(name string) user.User {
	u, err := r.users.Create(context.Background(), user.User{Name: name, Email: name + "@example.com", PasswordHash: "x"})
	if err != nil {
		panic(err)
	}
	return u
}

func (r memoryRepos) mustMatches(items ...match.Match) {
	if _, err := r.matches.Upsert(context.Background(), items); err != nil {
		panic(err)
	}
}

type stubTokenIssuer struct {
	issued []user.Principal
}

func (s *stubTokenIssuer) Issue(_ context.Context, p user.Principal) (string, time.Time, error) {
	s.issued = append(s.issued, p)
	return fmt.Sprintf("token-%d", p.UserID), testNow.Add(time.Hour), nil
}

// plainHasher stores passwords verbatim with a prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Compare(hash, plain string) error {
	if hash != "hashed:"+plain {
		return password.ErrMismatch
	}
	return nil
}

// sequenceIDs hands out queued codes first, then numbered ones.
type sequenceIDs struct {
	mu     sync.Mutex
	queued []string
	n      int
}

func (g *sequenceIDs) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		v := g.queued[0]
		g.queued = g.queued[1:]
		return v
	}
	g.n++
	return fmt.Sprintf("%s%07d", prefix, g.n)
}

func (g *sequenceIDs) NewToken() (string, error)         { return g.next("tok-"), nil }
func (g *sequenceIDs) NewInviteCode() (string, error)    { return g.next("g"), nil }
func (g *sequenceIDs) NewJoinCode(_ int) (string, error) { return g.next("c"), nil }

type recordingMetrics struct {
	mu            sync.Mutex
	saved         map[string]int
	rescored      int
	notifications map[string]int
	upserted      int
	leagueFailed  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{saved: map[string]int{}, notifications: map[string]int{}}
}

func (m *recordingMetrics) PredictionSaved(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[action]++
}

func (m *recordingMetrics) PredictionsRescored(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rescored += n
}

func (m *recordingMetrics) NotificationOutcome(window, outcome string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[window+"/"+outcome] += n
}

func (m *recordingMetrics) FixturesUpserted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted += n
}

func (m *recordingMetrics) FixtureLeagueFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leagueFailed++
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingInvalidator) InvalidateRankings(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

type sentPush struct {
	endpoint string
	msg      PushMessage
}

// recordingSender fails endpoints listed in errs and records the rest.
type recordingSender struct {
	mu   sync.Mutex
	errs map[string]error
	sent []sentPush
}

func (s *recordingSender) Send(_ context.Context, sub pushsubscription.Subscription, msg PushMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[sub.Endpoint]; ok {
		return err
	}
	s.sent = append(s.sent, sentPush{endpoint: sub.Endpoint, msg: msg})
	return nil
}

type stubFixtureProvider struct {
	mu       sync.Mutex
	fixtures map[match.LeagueSeason][]match.Match
	errs     map[match.LeagueSeason]error
	calls    []match.LeagueSeason
}

func (p *stubFixtureProvider) FetchFixtures(_ context.Context, leagueID int64, season int) ([]match.Match, error) {
	key := match.LeagueSeason{LeagueID: leagueID, Season: season}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, key)
	if err := p.errs[key]; err != nil {
		return nil, err
	}
	return append([]match.Match(nil), p.fixtures[key]...), nil
}
