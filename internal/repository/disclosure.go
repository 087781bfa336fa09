// Package repository provides data access for disclosures and subscribers.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type DisclosureRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewDisclosureRepository(db *sqlx.DB, log logger.Logger) *DisclosureRepository {
	return &DisclosureRepository{
		db:     db,
		logger: log,
	}
}

// InsertIfNew persists the disclosure unless its identity key already exists.
// Returns true when a row was inserted. The check-and-insert is a single
// statement, so concurrent ingests cannot both claim the same key.
func (r *DisclosureRepository) InsertIfNew(ctx context.Context, d *models.Disclosure) (bool, error) {
	query := `
		INSERT INTO disclosures (id, stock_code, title, date, category, pdf_link, scraped_at, notified)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT (id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.StockCode,
		d.Title,
		d.Date,
		d.Category,
		d.PDFLink,
		d.ScrapedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert disclosure: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkNotified flips the notified flag after a delivery batch completed.
func (r *DisclosureRepository) MarkNotified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE disclosures SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("disclosure %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetByID returns a single disclosure by identity key.
func (r *DisclosureRepository) GetByID(ctx context.Context, id string) (*models.Disclosure, error) {
	var d models.Disclosure
	err := r.db.GetContext(ctx, &d,
		`SELECT id, stock_code, title, date, category, pdf_link, scraped_at, notified
		 FROM disclosures WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("disclosure %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query disclosure: %w", err)
	}
	return &d, nil
}

// Latest returns the most recently scraped disclosures, newest first.
func (r *DisclosureRepository) Latest(ctx context.Context, limit int) ([]models.Disclosure, error) {
	disclosures := make([]models.Disclosure, 0, limit)
	err := r.db.SelectContext(ctx, &disclosures,
		`SELECT id, stock_code, title, date, category, pdf_link, scraped_at, notified
		 FROM disclosures
		 ORDER BY scraped_at DESC, id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest disclosures: %w", err)
	}
	return disclosures, nil
}

// Count returns the total number of tracked disclosures.
func (r *DisclosureRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM disclosures`); err != nil {
		return 0, fmt.Errorf("count disclosures: %w", err)
	}
	return count, nil
}
