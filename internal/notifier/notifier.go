// Package notifier fans out new-disclosure notifications to all active
// subscribers, tolerating per-recipient failures.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/models"
)

// Transport delivers a single message to a chat.
type Transport interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// SubscriberStore is the subscriber persistence surface the notifier needs.
type SubscriberStore interface {
	ListActive(ctx context.Context) ([]models.Subscriber, error)
	Deactivate(ctx context.Context, userID int64) error
}

// DisclosureStore marks records as notified once a batch completed.
type DisclosureStore interface {
	MarkNotified(ctx context.Context, id string) error
}

// FormatFunc renders a disclosure as an outgoing message.
type FormatFunc func(models.Disclosure) string

// Report summarizes one Notify call.
type Report struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type Notifier struct {
	transport   Transport
	subscribers SubscriberStore
	disclosures DisclosureStore
	format      FormatFunc
	workers     int
	logger      logger.Logger
}

func New(
	transport Transport,
	subscribers SubscriberStore,
	disclosures DisclosureStore,
	format FormatFunc,
	workers int,
	log logger.Logger,
) *Notifier {
	if workers < 1 {
		workers = 1
	}
	return &Notifier{
		transport:   transport,
		subscribers: subscribers,
		disclosures: disclosures,
		format:      format,
		workers:     workers,
		logger:      log,
	}
}

// Notify delivers each new record to every active subscriber. Dispatches for
// one record run concurrently, bounded by the worker limit, and the batch is
// awaited before the record's notified flag is committed. Permanently
// unreachable subscribers are deactivated immediately and skipped for the
// remaining records; transient failures are counted and not retried within
// the call. At-least-once overall: notified is set even when some deliveries
// failed.
func (n *Notifier) Notify(ctx context.Context, newRecords []models.Disclosure) (Report, error) {
	var report Report
	if len(newRecords) == 0 {
		return report, nil
	}

	subscribers, err := n.subscribers.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("load subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		n.logger.Info("No active subscribers; skipping notification batch")
		return report, nil
	}

	recipients := make([]int64, 0, len(subscribers))
	for _, s := range subscribers {
		recipients = append(recipients, s.UserID)
	}

	for i := range newRecords {
		record := newRecords[i]
		delivered, failed, unreachable := n.fanOut(ctx, record, recipients)
		report.Delivered += delivered
		report.Failed += failed

		if len(unreachable) > 0 {
			recipients = n.deactivate(ctx, recipients, unreachable)
		}

		if markErr := n.disclosures.MarkNotified(ctx, record.ID); markErr != nil {
			return report, fmt.Errorf("mark notified %s: %w", record.ID, markErr)
		}

		n.logger.Info("Disclosure notified",
			logger.String("id", record.ID),
			logger.String("stock_code", record.StockCode),
			logger.Int("delivered", delivered),
			logger.Int("failed", failed),
		)
	}

	return report, nil
}

// fanOut dispatches one record to all recipients with bounded concurrency
// and waits for every attempt to account.
func (n *Notifier) fanOut(ctx context.Context, record models.Disclosure, recipients []int64) (delivered, failed int, unreachable []int64) {
	text := n.format(record)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, n.workers)
	)

	for _, chatID := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(chatID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			err := n.transport.Send(ctx, chatID, text)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				delivered++
				return
			}
			failed++
			if IsPermanent(err) {
				unreachable = append(unreachable, chatID)
				n.logger.Warn("Subscriber unreachable, deactivating",
					logger.Int64("user_id", chatID),
					logger.Error(err),
				)
				return
			}
			n.logger.Warn("Delivery failed",
				logger.Int64("user_id", chatID),
				logger.Error(err),
			)
		}(chatID)
	}
	wg.Wait()

	return delivered, failed, unreachable
}

// deactivate flips unreachable subscribers to inactive and removes them from
// the in-flight recipient set, so later records in the same batch skip them.
// A failed deactivation is logged but does not abort the batch; the in-memory
// removal still prevents further sends this cycle.
func (n *Notifier) deactivate(ctx context.Context, recipients, unreachable []int64) []int64 {
	drop := make(map[int64]struct{}, len(unreachable))
	for _, id := range unreachable {
		drop[id] = struct{}{}
		if err := n.subscribers.Deactivate(ctx, id); err != nil {
			n.logger.Error("Failed to deactivate subscriber",
				logger.Int64("user_id", id),
				logger.Error(err),
			)
		}
	}

	remaining := recipients[:0]
	for _, id := range recipients {
		if _, gone := drop[id]; !gone {
			remaining = append(remaining, id)
		}
	}
	return remaining
}
