package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/models"
)

const (
	updatePollTimeout = 30 * time.Second
	commandTimeout    = 10 * time.Second
	// latestSendDelay spaces out the messages a /latest burst produces.
	latestSendDelay = 500 * time.Millisecond
)

// SubscriberService is the subscription surface the command layer drives.
type SubscriberService interface {
	Subscribe(ctx context.Context, userID int64, username string) error
	Deactivate(ctx context.Context, userID int64) error
	CountActive(ctx context.Context) (int, error)
}

// DisclosureService serves stored disclosures to /latest and /stats.
type DisclosureService interface {
	Latest(ctx context.Context, limit int) ([]models.Disclosure, error)
	Count(ctx context.Context) (int, error)
}

// CommandHandler is the thin subscriber-facing command surface. It only does
// CRUD on subscriptions and reads from the store; the scrape pipeline never
// depends on it.
type CommandHandler struct {
	client      *Client
	subscribers SubscriberService
	disclosures DisclosureService
	latestLimit int
	interval    time.Duration
	logger      logger.Logger
}

func NewCommandHandler(
	client *Client,
	subscribers SubscriberService,
	disclosures DisclosureService,
	latestLimit int,
	interval time.Duration,
	log logger.Logger,
) *CommandHandler {
	return &CommandHandler{
		client:      client,
		subscribers: subscribers,
		disclosures: disclosures,
		latestLimit: latestLimit,
		interval:    interval,
		logger:      log,
	}
}

// Run long-polls for updates until the context is cancelled.
func (h *CommandHandler) Run(ctx context.Context) {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = int(updatePollTimeout.Seconds())

	updates := h.client.bot.GetUpdatesChan(updateCfg)
	h.logger.Info("Command handler started")

	for {
		select {
		case <-ctx.Done():
			h.client.bot.StopReceivingUpdates()
			h.logger.Info("Command handler stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *CommandHandler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	chatID := update.Message.Chat.ID
	command := update.Message.Command()

	h.logger.Debug("Command received",
		logger.String("command", command),
		logger.Int64("chat_id", chatID),
	)

	switch command {
	case "start":
		h.handleStart(cmdCtx, update)
	case "stop":
		h.handleStop(cmdCtx, chatID)
	case "latest":
		h.handleLatest(cmdCtx, chatID)
	case "stats":
		h.handleStats(cmdCtx, chatID)
	case "help":
		h.client.reply(chatID, helpMessage)
	}
}

// handleStart auto-subscribes the chat and sends the welcome message.
func (h *CommandHandler) handleStart(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	username := ""
	if update.Message.From != nil {
		username = update.Message.From.UserName
	}

	if err := h.subscribers.Subscribe(ctx, chatID, username); err != nil {
		h.logger.Error("Subscribe failed",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		h.client.reply(chatID, "⚠️ Terjadi kesalahan, coba lagi nanti.")
		return
	}
	h.client.reply(chatID, welcomeMessage)
}

func (h *CommandHandler) handleStop(ctx context.Context, chatID int64) {
	if err := h.subscribers.Deactivate(ctx, chatID); err != nil {
		h.logger.Error("Unsubscribe failed",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		h.client.reply(chatID, "⚠️ Terjadi kesalahan, coba lagi nanti.")
		return
	}
	h.client.reply(chatID, stoppedMessage)
}

// handleLatest sends the most recent stored disclosures, one message each.
func (h *CommandHandler) handleLatest(ctx context.Context, chatID int64) {
	disclosures, err := h.disclosures.Latest(ctx, h.latestLimit)
	if err != nil {
		h.logger.Error("Latest lookup failed",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		h.client.reply(chatID, "❌ Tidak dapat mengambil data disclosure.")
		return
	}
	if len(disclosures) == 0 {
		h.client.reply(chatID, "Belum ada disclosure yang terpantau.")
		return
	}

	for _, d := range disclosures {
		h.client.reply(chatID, FormatDisclosure(d))

		select {
		case <-ctx.Done():
			return
		case <-time.After(latestSendDelay):
		}
	}
}

func (h *CommandHandler) handleStats(ctx context.Context, chatID int64) {
	subscriberCount, err := h.subscribers.CountActive(ctx)
	if err != nil {
		h.logger.Error("Stats lookup failed", logger.Error(err))
		h.client.reply(chatID, "⚠️ Terjadi kesalahan, coba lagi nanti.")
		return
	}
	disclosureCount, err := h.disclosures.Count(ctx)
	if err != nil {
		h.logger.Error("Stats lookup failed", logger.Error(err))
		h.client.reply(chatID, "⚠️ Terjadi kesalahan, coba lagi nanti.")
		return
	}

	h.client.reply(chatID, formatStats(subscriberCount, disclosureCount, h.interval.String()))
}
