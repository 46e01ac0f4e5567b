package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/resilience"
)

const (
	defaultNotifyWorkers = 8
	notifyRunTimeout     = 5 * time.Minute

	notifyOutcomeSent    = "sent"
	notifyOutcomeSkipped = "skipped"
	notifyOutcomeFailed  = "failed"
)

var reminderBodies = map[notification.Window]string{
	notification.WindowTwentyFourHour: "¡Haz tu pronóstico antes de que comience el partido mañana!",
	notification.WindowOneHour:        "¡Falta menos de una hora! Haz tu pronóstico antes del inicio.",
}

type WindowCounts struct {
	Sent    int
	Skipped int
	Failed  int
}

type NotifyResult struct {
	Matches int
	Windows map[notification.Window]WindowCounts
	// Removed counts subscriptions dropped because the push service reported
	// them gone.
	Removed int
}

type notifyTask struct {
	userID int64
	match  match.Match
	window notification.Window
	subs   []pushsubscription.Subscription
}

type NotificationService struct {
	matches match.Repository
	users   user.Repository
	preds   prediction.Repository
	markers notification.Repository
	subs    pushsubscription.Repository
	sender  PushSender
	workers int
	metrics Metrics
	logger  *logging.Logger
	flight  resilience.SingleFlight
	now     func() time.Time

	runTimeout time.Duration
}

func NewNotificationService(
	matches match.Repository,
	users user.Repository,
	preds prediction.Repository,
	markers notification.Repository,
	subs pushsubscription.Repository,
	sender PushSender,
	workers int,
	metrics Metrics,
	logger *logging.Logger,
) *NotificationService {
	if workers <= 0 {
		workers = defaultNotifyWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationService{
		matches: matches,
		users:   users,
		preds:   preds,
		markers: markers,
		subs:    subs,
		sender:  sender,
		workers: workers,
		metrics: metricsOrNop(metrics),
		logger:  logger.Named("notifier"),
		now:     time.Now,

		runTimeout: notifyRunTimeout,
	}
}

// NotifyUpcoming reminds users without a prediction about matches kicking off
// within a day. Each (user, match, window) is delivered at most once;
// overlapping calls in this process share one run.
func (s *NotificationService) NotifyUpcoming(ctx context.Context) (NotifyResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.NotifyUpcoming")
	defer span.End()

	if s.sender == nil {
		return NotifyResult{}, fmt.Errorf("%w: push sender is not configured", ErrDependencyUnavailable)
	}

	// The run is shared by every joined caller, so it outlives the first one.
	result, shared, err := resilience.Collapse(&s.flight, "notifications:upcoming", func() (NotifyResult, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.runTimeout)
		defer cancel()
		return s.notifyOnce(runCtx)
	})
	if shared {
		s.logger.InfoContext(ctx, "joined in-flight notification run")
	}
	if err != nil {
		recordSpanError(span, err)
		return NotifyResult{}, err
	}
	return result, nil
}

func (s *NotificationService) notifyOnce(ctx context.Context) (NotifyResult, error) {
	now := s.now().UTC()
	result := NotifyResult{Windows: make(map[notification.Window]WindowCounts)}

	upcoming, err := s.matches.ListKickoffBetween(ctx, now, now.Add(notification.Horizon))
	if err != nil {
		return result, fmt.Errorf("list upcoming matches: %w", err)
	}

	byWindow := make(map[notification.Window][]match.Match)
	matchIDs := make([]int64, 0, len(upcoming))
	for _, m := range upcoming {
		w, ok := notification.Classify(now, m.KickoffAt)
		if !ok {
			continue
		}
		byWindow[w] = append(byWindow[w], m)
		matchIDs = append(matchIDs, m.ID)
	}
	result.Matches = len(matchIDs)
	if len(matchIDs) == 0 {
		return result, nil
	}

	userIDs, err := s.users.ListIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("list user ids: %w", err)
	}
	predictors, err := s.preds.ListPredictors(ctx, matchIDs)
	if err != nil {
		return result, fmt.Errorf("list predictors: %w", err)
	}

	type candidate struct {
		userID int64
		match  match.Match
		window notification.Window
	}
	candidates := make([]candidate, 0)
	candidateUsers := make(map[int64]struct{})

	windows := make([]notification.Window, 0, len(byWindow))
	for w := range byWindow {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })

	for _, w := range windows {
		ms := byWindow[w]
		ids := make([]int64, 0, len(ms))
		for _, m := range ms {
			ids = append(ids, m.ID)
		}
		sent, err := s.markers.ListSent(ctx, ids, w)
		if err != nil {
			return result, fmt.Errorf("list sent markers: %w", err)
		}

		counts := result.Windows[w]
		for _, m := range ms {
			for _, uid := range userIDs {
				if _, predicted := predictors[m.ID][uid]; predicted {
					continue
				}
				if _, done := sent[notification.Key{UserID: uid, MatchID: m.ID}]; done {
					counts.Skipped++
					continue
				}
				candidates = append(candidates, candidate{userID: uid, match: m, window: w})
				candidateUsers[uid] = struct{}{}
			}
		}
		result.Windows[w] = counts
	}
	if len(candidates) == 0 {
		s.recordOutcomes(result)
		return result, nil
	}

	ids := make([]int64, 0, len(candidateUsers))
	for uid := range candidateUsers {
		ids = append(ids, uid)
	}
	subsByUser, err := s.subs.ListByUsers(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("list push subscriptions: %w", err)
	}

	tasks := make([]notifyTask, 0, len(candidates))
	for _, c := range candidates {
		subs := subsByUser[c.userID]
		if len(subs) == 0 {
			counts := result.Windows[c.window]
			counts.Skipped++
			result.Windows[c.window] = counts
			continue
		}
		tasks = append(tasks, notifyTask{userID: c.userID, match: c.match, window: c.window, subs: subs})
	}

	if err := s.deliver(ctx, tasks, &result); err != nil {
		return result, err
	}

	s.recordOutcomes(result)
	s.logger.InfoContext(ctx, "notification run finished",
		"matches", result.Matches,
		"tasks", len(tasks),
		"removed_subscriptions", result.Removed,
	)
	return result, nil
}

func (s *NotificationService) deliver(ctx context.Context, tasks []notifyTask, result *NotifyResult) error {
	if len(tasks) == 0 {
		return nil
	}

	pool, err := ants.NewPool(min(s.workers, len(tasks)))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome, removed := s.deliverOne(ctx, task)

			mu.Lock()
			defer mu.Unlock()
			counts := result.Windows[task.window]
			switch outcome {
			case notifyOutcomeSent:
				counts.Sent++
			case notifyOutcomeSkipped:
				counts.Skipped++
			default:
				counts.Failed++
			}
			result.Windows[task.window] = counts
			result.Removed += removed
		}); err != nil {
			workers.Done()
			workers.Wait()
			return fmt.Errorf("submit notification task: %w", err)
		}
	}
	workers.Wait()
	return nil
}

// deliverOne pushes to every subscription of the user and marks the triple
// sent once at least one delivery succeeded.
func (s *NotificationService) deliverOne(ctx context.Context, task notifyTask) (string, int) {
	already, err := s.markers.HasSent(ctx, task.userID, task.match.ID, task.window)
	if err != nil {
		s.logger.WarnContext(ctx, "check notification marker failed",
			"user_id", task.userID, "match_id", task.match.ID, "error", err)
		return notifyOutcomeFailed, 0
	}
	if already {
		return notifyOutcomeSkipped, 0
	}

	msg := PushMessage{
		Title:   fmt.Sprintf("⚽ %s vs %s", task.match.HomeTeam, task.match.AwayTeam),
		Body:    reminderBodies[task.window],
		MatchID: task.match.ID,
		Window:  string(task.window),
	}

	delivered, removed := 0, 0
	for _, sub := range task.subs {
		err := s.sender.Send(ctx, sub, msg)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrSubscriptionGone):
			if delErr := s.subs.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
				s.logger.WarnContext(ctx, "delete gone subscription failed", "user_id", task.userID, "error", delErr)
			} else {
				removed++
			}
		default:
			s.logger.WarnContext(ctx, "push delivery failed",
				"user_id", task.userID, "match_id", task.match.ID, "window", string(task.window), "error", err)
		}
	}
	if delivered == 0 {
		return notifyOutcomeFailed, removed
	}

	created, err := s.markers.MarkSent(ctx, notification.Marker{
		UserID:  task.userID,
		MatchID: task.match.ID,
		Window:  task.window,
		SentAt:  s.now().UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "mark notification sent failed",
			"user_id", task.userID, "match_id", task.match.ID, "error", err)
		return notifyOutcomeSent, removed
	}
	if !created {
		s.logger.DebugContext(ctx, "notification marker already present", "user_id", task.userID, "match_id", task.match.ID)
	}
	return notifyOutcomeSent, removed
}

func (s *NotificationService) recordOutcomes(result NotifyResult) {
	for w, c := range result.Windows {
		s.metrics.NotificationOutcome(string(w), notifyOutcomeSent, c.Sent)
		s.metrics.NotificationOutcome(string(w), notifyOutcomeSkipped, c.Skipped)
		s.metrics.NotificationOutcome(string(w), notifyOutcomeFailed, c.Failed)
	}
}
