package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/models"
)

type SubscriberRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewSubscriberRepository(db *sqlx.DB, log logger.Logger) *SubscriberRepository {
	return &SubscriberRepository{
		db:     db,
		logger: log,
	}
}

// Subscribe creates or reactivates a subscriber.
func (r *SubscriberRepository) Subscribe(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO subscribers (user_id, username, subscribed_at, active)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			subscribed_at = excluded.subscribed_at,
			active = 1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, username, time.Now().UTC()); err != nil {
		return fmt.Errorf("subscribe user %d: %w", userID, err)
	}

	r.logger.Info("Subscriber activated",
		logger.Int64("user_id", userID),
	)
	return nil
}

// Deactivate marks a subscriber inactive. Used for /stop and for chats that
// became permanently unreachable. The row is kept for stats.
func (r *SubscriberRepository) Deactivate(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE subscribers SET active = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deactivate user %d: %w", userID, err)
	}
	return nil
}

// ListActive returns all subscribers that should receive notifications.
func (r *SubscriberRepository) ListActive(ctx context.Context) ([]models.Subscriber, error) {
	subscribers := make([]models.Subscriber, 0)
	err := r.db.SelectContext(ctx, &subscribers,
		`SELECT user_id, username, subscribed_at, active
		 FROM subscribers
		 WHERE active = 1
		 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query active subscribers: %w", err)
	}
	return subscribers, nil
}

// IsActive reports whether the user currently has an active subscription.
func (r *SubscriberRepository) IsActive(ctx context.Context, userID int64) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active,
		`SELECT active FROM subscribers WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query subscriber %d: %w", userID, err)
	}
	return active, nil
}

// CountActive returns the number of active subscribers.
func (r *SubscriberRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM subscribers WHERE active = 1`)
	if err != nil {
		return 0, fmt.Errorf("count active subscribers: %w", err)
	}
	return count, nil
}
