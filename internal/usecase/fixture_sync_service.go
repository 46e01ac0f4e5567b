package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultSyncConcurrency = 4
	syncRunTimeout         = 5 * time.Minute
)

type FixtureSyncConfig struct {
	Enabled     bool
	Leagues     []match.LeagueSeason
	Concurrency int
}

type LeagueSyncFailure struct {
	LeagueID int64
	Season   int
	Error    string
}

type SyncResult struct {
	Leagues  int
	Fetched  int
	Upserted int
	Rescored int
	Failures []LeagueSyncFailure
}

type resultApplier interface {
	ApplyResult(ctx context.Context, matchID int64, home, away int) (int, error)
}

type leagueFetch struct {
	target  match.LeagueSeason
	matches []match.Match
	err     error
}

type FixtureSyncService struct {
	cfg          FixtureSyncConfig
	provider     FixtureProvider
	matches      match.Repository
	competitions competition.Repository
	results      resultApplier
	metrics      Metrics
	logger       *logging.Logger
	flight       resilience.SingleFlight
	runTimeout   time.Duration
}

func NewFixtureSyncService(
	cfg FixtureSyncConfig,
	provider FixtureProvider,
	matches match.Repository,
	competitions competition.Repository,
	results resultApplier,
	metrics Metrics,
	logger *logging.Logger,
) *FixtureSyncService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultSyncConcurrency
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureSyncService{
		cfg:          cfg,
		provider:     provider,
		matches:      matches,
		competitions: competitions,
		results:      results,
		metrics:      metricsOrNop(metrics),
		logger:       logger.Named("fixture-sync"),
		runTimeout:   syncRunTimeout,
	}
}

// Sync refreshes fixtures for every configured and competition league and
// re-scores matches whose final score appeared or changed. A league that
// fails to fetch does not stop the others; the run fails only when all fail.
func (s *FixtureSyncService) Sync(ctx context.Context) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSyncService.Sync")
	defer span.End()

	if !s.cfg.Enabled || s.provider == nil {
		return SyncResult{}, fmt.Errorf("%w: fixture sync is disabled (APISPORTS_ENABLED=false)", ErrDependencyUnavailable)
	}

	// The run is shared by every joined caller, so it outlives the first one.
	result, _, err := resilience.Collapse(&s.flight, "fixtures:sync", func() (SyncResult, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.runTimeout)
		defer cancel()
		return s.syncOnce(runCtx)
	})
	if err != nil {
		recordSpanError(span, err)
		return SyncResult{}, err
	}
	return result, nil
}

func (s *FixtureSyncService) syncOnce(ctx context.Context) (SyncResult, error) {
	targets, err := s.targets(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	result := SyncResult{Leagues: len(targets)}
	if len(targets) == 0 {
		return result, nil
	}

	p := pool.NewWithResults[leagueFetch]().WithMaxGoroutines(min(s.cfg.Concurrency, len(targets)))
	for _, target := range targets {
		p.Go(func() leagueFetch {
			items, err := s.provider.FetchFixtures(ctx, target.LeagueID, target.Season)
			return leagueFetch{target: target, matches: items, err: err}
		})
	}
	fetched := p.Wait()
	sort.Slice(fetched, func(i, j int) bool {
		if fetched[i].target.LeagueID != fetched[j].target.LeagueID {
			return fetched[i].target.LeagueID < fetched[j].target.LeagueID
		}
		return fetched[i].target.Season < fetched[j].target.Season
	})

	for _, f := range fetched {
		if f.err == nil {
			f.err = s.store(ctx, f.matches, &result)
		}
		if f.err != nil {
			s.metrics.FixtureLeagueFailed()
			s.logger.WarnContext(ctx, "league fixture sync failed",
				"league_id", f.target.LeagueID, "season", f.target.Season, "error", f.err)
			result.Failures = append(result.Failures, LeagueSyncFailure{
				LeagueID: f.target.LeagueID,
				Season:   f.target.Season,
				Error:    f.err.Error(),
			})
			continue
		}
		result.Fetched += len(f.matches)
	}

	s.metrics.FixturesUpserted(result.Upserted)
	s.logger.InfoContext(ctx, "fixture sync finished",
		"leagues", result.Leagues,
		"fetched", result.Fetched,
		"upserted", result.Upserted,
		"rescored", result.Rescored,
		"failed_leagues", len(result.Failures),
	)

	if len(result.Failures) == len(targets) {
		return result, fmt.Errorf("%w: all %d league fetches failed", ErrDependencyUnavailable, len(targets))
	}
	return result, nil
}

// store refreshes fixture rows without their scores and then applies each new
// or changed final through the result applier, which is the only writer of a
// stored score. A failed rescore therefore leaves the score unstored and the
// next run retries it.
func (s *FixtureSyncService) store(ctx context.Context, items []match.Match, result *SyncResult) error {
	if len(items) == 0 {
		return nil
	}

	fixtures := make([]match.Match, 0, len(items))
	rows := make([]match.Match, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		m := normalizeFixture(item)
		fixtures = append(fixtures, m)
		m.ScoreHome, m.ScoreAway = nil, nil
		rows = append(rows, m)
		ids = append(ids, m.ID)
	}

	existing, err := s.matches.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("list existing matches: %w", err)
	}
	previous := make(map[int64]match.Match, len(existing))
	for _, m := range existing {
		previous[m.ID] = m
	}

	upserted, err := s.matches.Upsert(ctx, rows)
	if err != nil {
		return fmt.Errorf("upsert matches: %w", err)
	}
	result.Upserted += upserted

	for _, m := range fixtures {
		final, ok := m.Result().Final()
		if !ok {
			continue
		}
		if old, seen := previous[m.ID]; seen {
			if oldFinal, had := old.Result().Final(); had && oldFinal == final {
				continue
			}
		}

		count, err := s.results.ApplyResult(ctx, m.ID, final.Home, final.Away)
		if err != nil {
			return fmt.Errorf("apply result for match %d: %w", m.ID, err)
		}
		result.Rescored += count
	}
	return nil
}

func (s *FixtureSyncService) targets(ctx context.Context) ([]match.LeagueSeason, error) {
	set := make(map[match.LeagueSeason]struct{}, len(s.cfg.Leagues))
	for _, l := range s.cfg.Leagues {
		set[l] = struct{}{}
	}

	if s.competitions != nil {
		leagues, err := s.competitions.ListLeagues(ctx)
		if err != nil {
			return nil, fmt.Errorf("list competition leagues: %w", err)
		}
		for _, l := range leagues {
			set[l.Key()] = struct{}{}
		}
	}

	out := make([]match.LeagueSeason, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	return match.NewScope(out...).LeagueSeasons(), nil
}

// normalizeFixture drops scores on non-final statuses so a stored score always
// means a final result.
func normalizeFixture(m match.Match) match.Match {
	m.Status = match.NormalizeStatus(m.Status)
	m.KickoffAt = m.KickoffAt.UTC().Truncate(time.Second)
	if !match.IsFinalStatus(m.Status) {
		m.ScoreHome = nil
		m.ScoreAway = nil
	}
	return m
}
