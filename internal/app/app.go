package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rogeliolopezcamara/quiniela-app/external/apisports"
	"github.com/rogeliolopezcamara/quiniela-app/external/webpush"
	"github.com/rogeliolopezcamara/quiniela-app/internal/config"
	"github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/account/jwtauth"
	"github.com/rogeliolopezcamara/quiniela-app/internal/interfaces/httpapi"
	"github.com/rogeliolopezcamara/quiniela-app/internal/observability"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	idgen "github.com/rogeliolopezcamara/quiniela-app/internal/platform/id"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/password"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

const bcryptCost = 12

// Container holds the wired services shared by the API server and the job
// runner.
type Container struct {
	Users          *usecase.UserService
	PasswordResets *usecase.PasswordResetService
	Predictions    *usecase.PredictionService
	Rankings       *usecase.RankingService
	Groups         *usecase.GroupService
	Competitions   *usecase.CompetitionService
	Push           *usecase.PushService
	MatchResults   *usecase.MatchResultService
	// FixtureSync is nil when the api-sports provider is disabled.
	FixtureSync *usecase.FixtureSyncService
	// Notifications is nil when no push sender is available.
	Notifications *usecase.NotificationService
	Tokens        *jwtauth.Service
	Metrics       *observability.Metrics

	close func() error
}

// Close releases the storage pool.
func (c *Container) Close() error {
	if c == nil || c.close == nil {
		return nil
	}
	return c.close()
}

func NewContainer(cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStoreWithSize(cfg.CacheSize, cfg.CacheTTL)
	}

	repos, closeRepos, err := openRepositories(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{close: closeRepos}
	var metrics usecase.Metrics
	if cfg.MetricsEnabled {
		c.Metrics = observability.NewMetrics()
		metrics = c.Metrics
	}

	c.Tokens, err = jwtauth.NewService(jwtauth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	}, store, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build token service: %w", err), closeRepos())
	}

	hasher := password.NewBcryptHasher(bcryptCost)
	ids := idgen.NewRandomGenerator()

	c.Rankings = usecase.NewRankingService(repos.users, repos.predictions, repos.groups, repos.competitions, store)
	c.Users = usecase.NewUserService(repos.users, repos.predictions, hasher, c.Tokens, c.Rankings)
	c.PasswordResets = usecase.NewPasswordResetService(repos.users, repos.resets, hasher, ids, usecase.PasswordResetConfig{
		FrontendURL: cfg.FrontendURL,
		TTL:         cfg.PasswordResetTTL,
	})
	c.Predictions = usecase.NewPredictionService(repos.matches, repos.predictions, repos.competitions, c.Rankings, metrics)
	c.Groups = usecase.NewGroupService(repos.groups, ids, c.Rankings)
	c.Competitions = usecase.NewCompetitionService(repos.competitions, c.Rankings, ids, c.Rankings)
	c.Push = usecase.NewPushService(repos.subscriptions)
	c.MatchResults = usecase.NewMatchResultService(repos.predictions, c.Rankings, metrics, logger.Named("results"))

	if cfg.APISportsEnabled {
		provider := apisports.NewClient(apisports.ClientConfig{
			BaseURL:           cfg.APISportsBaseURL,
			Key:               cfg.APISportsKey,
			Timeout:           cfg.APISportsTimeout,
			MaxRetries:        cfg.APISportsMaxRetries,
			RequestsPerMinute: cfg.APISportsRequestsPerMinute,
			CircuitBreaker:    cfg.APISportsCircuit,
			Logger:            logger,
		})
		c.FixtureSync = usecase.NewFixtureSyncService(usecase.FixtureSyncConfig{
			Enabled:     true,
			Leagues:     cfg.FixtureSyncLeagues,
			Concurrency: cfg.FixtureSyncConcurrency,
		}, provider, repos.matches, repos.competitions, c.MatchResults, metrics, logger)
	} else {
		logger.Warn("api-sports provider disabled; fixture sync unavailable")
	}

	sender, err := newPushSender(cfg, logger)
	if err != nil {
		return nil, errors.Join(err, closeRepos())
	}
	if sender != nil {
		c.Notifications = usecase.NewNotificationService(
			repos.matches, repos.users, repos.predictions, repos.markers, repos.subscriptions,
			sender, cfg.NotifyWorkers, metrics, logger,
		)
	} else {
		logger.Warn("web push disabled; notification job unavailable")
	}

	return c, nil
}

// newPushSender returns the VAPID sender when enabled, a logging stand-in in
// development, and nil otherwise.
func newPushSender(cfg config.Config, logger *logging.Logger) (usecase.PushSender, error) {
	if cfg.WebPushEnabled {
		sender, err := webpush.NewSender(webpush.Config{
			VAPIDPublicKey:  cfg.WebPushVAPIDPublicKey,
			VAPIDPrivateKey: cfg.WebPushVAPIDPrivateKey,
			Subscriber:      cfg.WebPushSubscriber,
			TTL:             cfg.WebPushTTL,
			Timeout:         cfg.WebPushTimeout,
			CircuitBreaker:  cfg.WebPushCircuit,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build web push sender: %w", err)
		}
		return sender, nil
	}
	if cfg.IsDev() {
		return webpush.NewLogSender(logger), nil
	}
	return nil, nil
}

// NewHTTPServer builds the API server. Closing the returned container is the
// caller's job once the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, *Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewHandler(
		c.Users,
		c.PasswordResets,
		c.Predictions,
		c.Rankings,
		c.Groups,
		c.Competitions,
		c.Push,
		c.MatchResults,
		c.FixtureSync,
		c.Notifications,
		logger,
	)

	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		ResetSecret:        cfg.ResetSecret,
		SwaggerEnabled:     cfg.SwaggerEnabled,

		AuthRateLimitPerMinute: cfg.AuthRateLimitPerMinute,
	}
	if c.Metrics != nil {
		routerCfg.MetricsHandler = c.Metrics.Handler()
		routerCfg.Observer = c.Metrics
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, c.Tokens, logger, routerCfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, c, nil
}
