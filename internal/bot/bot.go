// Package bot adapts Telegram chats to the dispatcher. Each chat maps to a
// space and each Telegram account to a user, so the same person gets an
// independent session per chat.
package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/glebk/worklog-bot/internal/dispatcher"
	"github.com/glebk/worklog-bot/internal/domain"
)

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	dispatcher  *dispatcher.Dispatcher
	pollTimeout int
	log         zerolog.Logger
}

// New creates a new Bot instance
func New(token string, d *dispatcher.Dispatcher, pollTimeoutSeconds int, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	return &Bot{
		api:         api,
		dispatcher:  d,
		pollTimeout: pollTimeoutSeconds,
		log:         log,
	}, nil
}

// Start runs the long-poll loop until the context is canceled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// handleMessage routes one chat message through the dispatcher and answers
// in the same chat.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	// Telegram clients send "/start", the command grammar expects bare
	// words. Fold the slash form into the plain one so both work.
	text := message.Text
	if message.IsCommand() {
		text = message.Command()
		if args := message.CommandArguments(); args != "" {
			text += " " + args
		}
	}

	userID := strconv.FormatInt(message.From.ID, 10)
	spaceID := strconv.FormatInt(message.Chat.ID, 10)

	reply := b.dispatcher.HandleMessage(ctx, text, userID, spaceID)
	b.sendMessage(message.Chat.ID, reply)
}

// Notify delivers a scheduler ping to the user's chat.
func (b *Bot) Notify(ctx context.Context, user *domain.User, text string) error {
	chatID, err := strconv.ParseInt(user.SpaceID, 10, 64)
	if err != nil {
		return fmt.Errorf("space %q is not a telegram chat: %w", user.SpaceID, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// sendMessage sends a simple text message
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}
