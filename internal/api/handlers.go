package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/metrics"
	"github.com/jonesrussell/idxwatch/internal/models"
	"github.com/jonesrussell/idxwatch/internal/scheduler"
)

const (
	defaultLatestLimit = 10
	maxLatestLimit     = 100
)

// CycleRunner triggers and inspects the scheduler loop.
type CycleRunner interface {
	RunNow(ctx context.Context) error
	Snapshot() scheduler.RunState
}

// DisclosureReader serves stored disclosures.
type DisclosureReader interface {
	Latest(ctx context.Context, limit int) ([]models.Disclosure, error)
	Count(ctx context.Context) (int, error)
}

// SubscriberCounter reports subscriber totals.
type SubscriberCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type Handler struct {
	runner      CycleRunner
	disclosures DisclosureReader
	subscribers SubscriberCounter
	metrics     *metrics.Metrics
	logger      logger.Logger
}

func NewHandler(
	runner CycleRunner,
	disclosures DisclosureReader,
	subscribers SubscriberCounter,
	m *metrics.Metrics,
	log logger.Logger,
) *Handler {
	return &Handler{
		runner:      runner,
		disclosures: disclosures,
		subscribers: subscribers,
		metrics:     m,
		logger:      log,
	}
}

// Status returns a snapshot of the scheduler loop.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Snapshot())
}

// Stats returns subscriber and disclosure totals.
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	subscriberCount, err := h.subscribers.CountActive(ctx)
	if err != nil {
		h.logger.Error("Failed to count subscribers", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	disclosureCount, err := h.disclosures.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count disclosures", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	h.metrics.ActiveSubscribers.Set(float64(subscriberCount))

	c.JSON(http.StatusOK, gin.H{
		"active_subscribers": subscriberCount,
		"disclosures":        disclosureCount,
	})
}

// LatestDisclosures returns the most recently scraped disclosures.
func (h *Handler) LatestDisclosures(c *gin.Context) {
	limit := defaultLatestLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLatestLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	disclosures, err := h.disclosures.Latest(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list disclosures", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list disclosures"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"disclosures": disclosures,
		"count":       len(disclosures),
	})
}

// Refresh triggers a manual scrape cycle. Conflicts with a running cycle
// return 409 instead of queueing.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.runner.RunNow(c.Request.Context()); err != nil {
		if errors.Is(err, scheduler.ErrCycleRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Manual refresh failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Refresh failed"})
		return
	}
	c.JSON(http.StatusOK, h.runner.Snapshot())
}
