// Package telegram is the bot transport: message delivery for the notifier
// and the subscriber-facing command surface.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/notifier"
)

// Client wraps the Telegram Bot API and implements notifier.Transport.
type Client struct {
	bot    *tgbotapi.BotAPI
	logger logger.Logger
}

func NewClient(token string, debug bool, log logger.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	bot.Debug = debug

	log.Info("Telegram bot authorized",
		logger.String("username", bot.Self.UserName),
	)
	return &Client{
		bot:    bot,
		logger: log,
	}, nil
}

// Send delivers a Markdown message to a chat. Failures are classified into
// notifier.DeliveryError so the notifier can deactivate unreachable chats.
// The Bot API client has no context support; cancellation is honored between
// attempts.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return &notifier.DeliveryError{Permanent: false, Err: err}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := c.bot.Send(msg); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps a Bot API error to a DeliveryError. 403s (bot blocked, chat
// deleted, bot kicked) are permanent; rate limits, timeouts, and server
// errors are transient.
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 {
			return &notifier.DeliveryError{Permanent: true, Err: err}
		}
		desc := strings.ToLower(apiErr.Message)
		if strings.Contains(desc, "blocked") ||
			strings.Contains(desc, "deactivated") ||
			strings.Contains(desc, "chat not found") {
			return &notifier.DeliveryError{Permanent: true, Err: err}
		}
		return &notifier.DeliveryError{Permanent: false, Err: err}
	}
	if strings.Contains(strings.ToLower(err.Error()), "forbidden") {
		return &notifier.DeliveryError{Permanent: true, Err: err}
	}
	return &notifier.DeliveryError{Permanent: false, Err: err}
}

// reply sends a Markdown response to a command.
func (c *Client) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := c.bot.Send(msg); err != nil {
		c.logger.Warn("Failed to send reply",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}
