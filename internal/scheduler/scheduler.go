// Package scheduler drives the scrape → ingest → notify cycle on a fixed
// interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/metrics"
	"github.com/jonesrussell/idxwatch/internal/models"
	"github.com/jonesrussell/idxwatch/internal/notifier"
	"github.com/jonesrussell/idxwatch/internal/scrape"
)

// initialDelay defers the first cycle so startup finishes before scraping.
const initialDelay = 10 * time.Second

// ErrCycleRunning is returned when a manual trigger overlaps a running cycle.
var ErrCycleRunning = errors.New("a scrape cycle is already running")

// Fetcher produces candidate disclosures from the listing source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Disclosure, error)
}

// Ingester filters candidates down to genuinely new records.
type Ingester interface {
	Ingest(ctx context.Context, candidates []models.Disclosure) ([]models.Disclosure, error)
}

// Notifier fans new records out to subscribers.
type Notifier interface {
	Notify(ctx context.Context, newRecords []models.Disclosure) (notifier.Report, error)
}

// RunState is a snapshot of the loop for the ops API.
type RunState struct {
	Running         bool            `json:"running"`
	CurrentSource   string          `json:"current_source,omitempty"`
	StartedAt       time.Time       `json:"started_at,omitzero"`
	LastCompletedAt time.Time       `json:"last_completed_at,omitzero"`
	LastDurationMS  int64           `json:"last_duration_ms"`
	LastError       string          `json:"last_error,omitempty"`
	LastSource      string          `json:"last_source,omitempty"`
	LastNewRecords  int             `json:"last_new_records"`
	LastReport      notifier.Report `json:"last_report"`
}

// Scheduler runs cycles forever until stopped. A single cycle's failure is
// isolated: it is logged, counted, and the loop keeps going.
type Scheduler struct {
	fetcher  Fetcher
	ingester Ingester
	notifier Notifier
	interval time.Duration
	metrics  *metrics.Metrics
	logger   logger.Logger

	cron *cron.Cron

	mu      sync.Mutex
	running bool
	state   RunState
}

func New(
	fetcher Fetcher,
	ingester Ingester,
	notif Notifier,
	interval time.Duration,
	m *metrics.Metrics,
	log logger.Logger,
) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		ingester: ingester,
		notifier: notif,
		interval: interval,
		metrics:  m,
		logger:   log,
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}
}

// Start schedules the recurring cycle and kicks off a first check shortly
// after startup. Non-blocking.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.run(ctx, "scheduled"); err != nil && !errors.Is(err, ErrCycleRunning) {
			s.logger.Error("Scheduled cycle failed", logger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule cycle: %w", err)
	}
	s.cron.Start()

	s.logger.Info("Scheduler started",
		logger.Duration("interval", s.interval),
	)

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(initialDelay):
		}
		if err := s.run(ctx, "initial"); err != nil && !errors.Is(err, ErrCycleRunning) {
			s.logger.Error("Initial cycle failed", logger.Error(err))
		}
	}()

	return nil
}

// Stop halts scheduling and waits for an in-flight cycle to finish, bounded
// by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronCtx := s.cron.Stop()
	select {
	case <-cronCtx.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
}

// RunNow triggers one cycle outside the schedule (ops API refresh). It
// serializes against the scheduled cycle via the same overlap guard.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.run(ctx, "manual")
}

// Snapshot returns the current loop state.
func (s *Scheduler) Snapshot() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) run(ctx context.Context, source string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrCycleRunning
	}
	s.running = true
	s.state.Running = true
	s.state.CurrentSource = source
	s.state.StartedAt = time.Now()
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info("Cycle started", logger.String("source", source))

	err := s.cycle(ctx)

	duration := time.Since(start)
	s.metrics.CyclesTotal.Inc()
	s.metrics.LastCycleDurationSec.Set(duration.Seconds())

	s.mu.Lock()
	s.running = false
	s.state.Running = false
	s.state.CurrentSource = ""
	s.state.LastCompletedAt = time.Now()
	s.state.LastDurationMS = duration.Milliseconds()
	s.state.LastSource = source
	if err != nil {
		s.state.LastError = err.Error()
	} else {
		s.state.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Cycle finished with error",
			logger.String("source", source),
			logger.Duration("took", duration),
			logger.Error(err),
		)
		return err
	}

	s.logger.Info("Cycle finished",
		logger.String("source", source),
		logger.Duration("took", duration),
	)
	return nil
}

// cycle runs one scrape → ingest → notify pass. A scrape failure skips the
// cycle without touching state; ingest is never handed the output of a
// failed scrape.
func (s *Scheduler) cycle(ctx context.Context) error {
	candidates, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.metrics.CycleErrorsTotal.WithLabelValues(metrics.StageScrape).Inc()
		s.logScrapeFailure(err)
		return fmt.Errorf("scrape: %w", err)
	}

	newRecords, err := s.ingester.Ingest(ctx, candidates)
	if err != nil {
		s.metrics.CycleErrorsTotal.WithLabelValues(metrics.StageIngest).Inc()
		return fmt.Errorf("ingest: %w", err)
	}
	s.metrics.DisclosuresIngested.Add(float64(len(newRecords)))

	s.mu.Lock()
	s.state.LastNewRecords = len(newRecords)
	s.mu.Unlock()

	if len(newRecords) == 0 {
		s.logger.Info("No new disclosures",
			logger.Int("candidates", len(candidates)),
		)
		return nil
	}

	report, err := s.notifier.Notify(ctx, newRecords)
	s.metrics.NotificationsSent.Add(float64(report.Delivered))
	s.metrics.NotificationsFailed.Add(float64(report.Failed))

	s.mu.Lock()
	s.state.LastReport = report
	s.mu.Unlock()

	if err != nil {
		s.metrics.CycleErrorsTotal.WithLabelValues(metrics.StageNotify).Inc()
		return fmt.Errorf("notify: %w", err)
	}

	s.logger.Info("Notification batch complete",
		logger.Int("new_records", len(newRecords)),
		logger.Int("delivered", report.Delivered),
		logger.Int("failed", report.Failed),
	)
	return nil
}

// logScrapeFailure logs parse failures with the raw snippet so a site
// structure change can be diagnosed from operational output alone.
func (s *Scheduler) logScrapeFailure(err error) {
	var parseErr *scrape.ParseError
	if errors.As(err, &parseErr) {
		s.logger.Error("Listing structure mismatch",
			logger.String("url", parseErr.URL),
			logger.String("reason", parseErr.Reason),
			logger.String("snippet", parseErr.Snippet),
		)
		return
	}

	var fetchErr *scrape.FetchError
	if errors.As(err, &fetchErr) {
		s.logger.Warn("Listing fetch failed",
			logger.String("url", fetchErr.URL),
			logger.Int("status", fetchErr.StatusCode),
			logger.Error(err),
		)
	}
}
