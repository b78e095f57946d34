// Package bot runs the Telegram bot that lets chats subscribe to catalog notifications.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Houeta/catalog-flow/internal/notification"
	"github.com/Houeta/catalog-flow/internal/repository"
	"gopkg.in/telebot.v4"
)

const handlerTimeout = 10 * time.Second

// Bot contains the bot API instance and other information.
type Bot struct {
	bot        API
	log        *slog.Logger
	repo       repository.SubscriptionRepository
	productIDs []int64
}

// NewBot authorizes with token and registers the command handlers.
func NewBot(
	log *slog.Logger,
	token string,
	poller time.Duration,
	repo repository.SubscriptionRepository,
	productIDs []int64,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on acount", "account", bot.Me.Username)

	botInstance := &Bot{bot: bot, log: log, repo: repo, productIDs: slices.Clone(productIDs)}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// Notify sends n to every subscribed chat. Failures for single chats are joined.
func (b *Bot) Notify(ctx context.Context, n notification.Notification) error {
	const opn = "bot.Notify"

	chats, err := b.repo.GetSubscribedChats(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to get subscribed chats: %w", opn, err)
	}

	text := renderText(n)

	var errs []error
	for _, chatID := range chats {
		if _, err = b.bot.Send(&telebot.Chat{ID: chatID}, text); err != nil {
			b.log.WarnContext(ctx, "Failed to send notification", "op", opn, "chat_id", chatID, "error", err)
			errs = append(errs, fmt.Errorf("%s: chat %d: %w", opn, chatID, err))
		}
	}

	return errors.Join(errs...)
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/stop", b.stopHandler)
	b.bot.Handle("/status", b.statusHandler)
}

func renderText(n notification.Notification) string {
	var sb strings.Builder
	sb.WriteString(n.Title)
	if n.Message != "" {
		sb.WriteString("\n\n")
		sb.WriteString(n.Message)
	}
	if n.Click != "" {
		sb.WriteString("\n\n")
		sb.WriteString(n.Click)
	}
	return sb.String()
}
