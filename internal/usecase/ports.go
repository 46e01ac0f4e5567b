package usecase

import (
	"context"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(ctx context.Context, principal user.Principal) (token string, expiresAt time.Time, err error)
}

// FixtureProvider fetches a league season's fixtures from the data provider.
type FixtureProvider interface {
	FetchFixtures(ctx context.Context, leagueID int64, season int) ([]match.Match, error)
}

// PushMessage is the payload delivered to the browser service worker.
type PushMessage struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	MatchID int64  `json:"match_id"`
	Window  string `json:"window"`
}

// PushSender delivers one message to one subscription. It returns
// ErrSubscriptionGone when the endpoint should be forgotten.
type PushSender interface {
	Send(ctx context.Context, sub pushsubscription.Subscription, msg PushMessage) error
}

// RankingInvalidator drops cached ranking tables after writes that change
// points or cohorts.
type RankingInvalidator interface {
	InvalidateRankings(ctx context.Context)
}

// Metrics receives business counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	PredictionSaved(action string)
	PredictionsRescored(count int)
	NotificationOutcome(window, outcome string, count int)
	FixturesUpserted(count int)
	FixtureLeagueFailed()
}

type nopMetrics struct{}

func (nopMetrics) PredictionSaved(string)                  {}
func (nopMetrics) PredictionsRescored(int)                 {}
func (nopMetrics) NotificationOutcome(string, string, int) {}
func (nopMetrics) FixturesUpserted(int)                    {}
func (nopMetrics) FixtureLeagueFailed()                    {}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateRankings(context.Context) {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

func invalidatorOrNop(inv RankingInvalidator) RankingInvalidator {
	if inv == nil {
		return nopInvalidator{}
	}
	return inv
}
