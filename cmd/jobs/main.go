package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/app"
	"github.com/rogeliolopezcamara/quiniela-app/internal/config"
	"github.com/rogeliolopezcamara/quiniela-app/internal/observability"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
)

const (
	jobTimeout      = 5 * time.Minute
	flushTimeout    = 10 * time.Second
	cmdSyncFixtures = "sync-fixtures"
	cmdNotify       = "send-notifications"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	if cmd != cmdSyncFixtures && cmd != cmdNotify {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).Named("jobs").
		With("service", observability.ServiceName(cfg, observability.ComponentJobs), "job", cmd, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	if err := run(cfg, cmd, logger); err != nil {
		logger.Error("job failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg config.Config, cmd string, logger *logging.Logger) error {
	shutdownTracing, err := observability.InitUptrace(cfg, observability.ComponentJobs, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, observability.ComponentJobs, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() { _ = stopProfiler() }()

	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer func() { _ = c.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	started := time.Now()
	switch cmd {
	case cmdSyncFixtures:
		if c.FixtureSync == nil {
			return fmt.Errorf("fixture sync is not configured (APISPORTS_ENABLED=false)")
		}
		result, err := c.FixtureSync.Sync(ctx)
		if err != nil {
			return err
		}
		logger.Info("fixture sync finished",
			"leagues", result.Leagues,
			"fetched", result.Fetched,
			"upserted", result.Upserted,
			"rescored", result.Rescored,
			"failures", len(result.Failures),
			"duration_ms", time.Since(started).Milliseconds(),
		)
		for _, f := range result.Failures {
			logger.Warn("league sync failed", "league_id", f.LeagueID, "season", f.Season, "error", f.Error)
		}
	case cmdNotify:
		if c.Notifications == nil {
			return fmt.Errorf("notifications are not configured (WEBPUSH_ENABLED=false)")
		}
		result, err := c.Notifications.NotifyUpcoming(ctx)
		if err != nil {
			return err
		}
		for window, counts := range result.Windows {
			logger.Info("notification window finished",
				"window", string(window),
				"sent", counts.Sent,
				"skipped", counts.Skipped,
				"failed", counts.Failed,
			)
		}
		logger.Info("notification job finished",
			"matches", result.Matches,
			"removed_subscriptions", result.Removed,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
	return nil
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <%s|%s>\n", name, cmdSyncFixtures, cmdNotify)
}
