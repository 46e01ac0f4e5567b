package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/rogeliolopezcamara/quiniela-app/internal/config"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	cacherepo "github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/repository/cache"
	"github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/repository/memory"
	"github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/repository/postgres"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
)

const dbPingTimeout = 5 * time.Second

type repositories struct {
	users         user.Repository
	matches       match.Repository
	predictions   prediction.Repository
	groups        group.Repository
	competitions  competition.Repository
	resets        passwordreset.Repository
	subscriptions pushsubscription.Repository
	markers       notification.Repository
}

// openRepositories selects the storage driver. The returned close func
// releases the database pool and is a no-op for the memory driver.
func openRepositories(cfg config.Config, store *cache.Store, logger *logging.Logger) (repositories, func() error, error) {
	var (
		repos   repositories
		closeFn = func() error { return nil }
	)

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		mem := memory.NewStore()
		repos = repositories{
			users:         memory.NewUserRepository(mem),
			matches:       memory.NewMatchRepository(mem),
			predictions:   memory.NewPredictionRepository(mem),
			groups:        memory.NewGroupRepository(mem),
			competitions:  memory.NewCompetitionRepository(mem),
			resets:        memory.NewPasswordResetRepository(mem),
			subscriptions: memory.NewPushSubscriptionRepository(mem),
			markers:       memory.NewNotificationRepository(mem),
		}
		seeded, err := repos.matches.Upsert(context.Background(), memory.SeedMatches(time.Now()))
		if err != nil {
			return repositories{}, nil, fmt.Errorf("seed memory matches: %w", err)
		}
		logger.Info("using in-memory storage", "seeded_matches", seeded)
	default:
		db, err := openDatabase(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		repos = repositories{
			users:         postgres.NewUserRepository(db),
			matches:       postgres.NewMatchRepository(db),
			predictions:   postgres.NewPredictionRepository(db),
			groups:        postgres.NewGroupRepository(db),
			competitions:  postgres.NewCompetitionRepository(db),
			resets:        postgres.NewPasswordResetRepository(db),
			subscriptions: postgres.NewPushSubscriptionRepository(db),
			markers:       postgres.NewNotificationRepository(db),
		}
		closeFn = db.Close
		logger.Info("using postgres storage",
			"db_name", postgres.DatabaseName(cfg.DBURL),
			"max_open_conns", cfg.DBMaxOpenConns,
		)
	}

	if store != nil {
		repos.competitions = cacherepo.NewCompetitionRepository(repos.competitions, store)
	}
	return repos, closeFn, nil
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := postgres.NormalizeDSN(cfg.DBURL, postgres.DSNOptions{
		SSLMode:          cfg.DBSSLMode,
		BinaryParameters: cfg.DBBinaryParameters,
	})
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(postgres.DatabaseName(dsn)),
		otelsql.WithQueryFormatter(postgres.FormatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
