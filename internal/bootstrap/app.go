// Package bootstrap wires the service together in startup order: config,
// logger, database, events, the Telegram bot, the scrape pipeline, and the
// ops HTTP server.
package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/idxwatch/internal/api"
	"github.com/jonesrussell/idxwatch/internal/ingest"
	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/metrics"
	"github.com/jonesrussell/idxwatch/internal/notifier"
	"github.com/jonesrussell/idxwatch/internal/repository"
	"github.com/jonesrussell/idxwatch/internal/scheduler"
	"github.com/jonesrussell/idxwatch/internal/scrape"
	"github.com/jonesrussell/idxwatch/internal/telegram"
)

const shutdownTimeout = 15 * time.Second

// Run starts the service and blocks until a shutdown signal or a fatal
// server error.
func Run(version string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting idxwatch",
		logger.String("listing_url", cfg.Scraper.ListingURL),
		logger.Duration("interval", cfg.Scraper.Interval),
	)

	db, err := SetupDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	publisher := SetupEventPublisher(cfg, log)

	tgClient, err := telegram.NewClient(cfg.Telegram.Token, cfg.Debug, log)
	if err != nil {
		return fmt.Errorf("telegram client: %w", err)
	}

	disclosureRepo := repository.NewDisclosureRepository(db.DB(), log)
	subscriberRepo := repository.NewSubscriberRepository(db.DB(), log)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	fetcher, err := scrape.NewFetcher(cfg.Scraper, log)
	if err != nil {
		return fmt.Errorf("scraper: %w", err)
	}

	engine := ingest.NewEngine(disclosureRepo, publisher, log)
	notif := notifier.New(
		tgClient,
		subscriberRepo,
		disclosureRepo,
		telegram.FormatDisclosure,
		cfg.Notifier.Workers,
		log,
	)
	sched := scheduler.New(fetcher, engine, notif, cfg.Scraper.Interval, m, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if startErr := sched.Start(ctx); startErr != nil {
		return fmt.Errorf("start scheduler: %w", startErr)
	}

	commands := telegram.NewCommandHandler(
		tgClient,
		subscriberRepo,
		disclosureRepo,
		cfg.Telegram.LatestLimit,
		cfg.Scraper.Interval,
		log,
	)
	go commands.Run(ctx)

	handler := api.NewHandler(sched, disclosureRepo, subscriberRepo, m, log)
	server := api.NewServer(cfg.Server, api.NewRouter(handler, registry, log, cfg.Debug))

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			logger.String("host", cfg.Server.Host),
			logger.Int("port", cfg.Server.Port),
		)
		serverErr <- server.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr := <-serverErr:
		if runErr != nil {
			return fmt.Errorf("http server: %w", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := sched.Stop(shutdownCtx); stopErr != nil {
		log.Error("Scheduler shutdown incomplete", logger.Error(stopErr))
	}
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("HTTP server shutdown incomplete", logger.Error(shutdownErr))
	}

	log.Info("Shutdown complete")
	return nil
}
