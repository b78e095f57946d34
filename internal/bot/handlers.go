package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Houeta/catalog-flow/internal/repository"
	"gopkg.in/telebot.v4"
)

// startHandler process command /start.
func (b *Bot) startHandler(c telebot.Context) error {
	if sender := c.Sender(); sender != nil {
		b.log.Info("User started the bot", "username", sender.Username)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reply, err := b.subscribe(ctx, c.Chat().ID)
	if err != nil {
		return err
	}

	if err = c.Send(reply); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// stopHandler process command /stop.
func (b *Bot) stopHandler(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reply, err := b.unsubscribe(ctx, c.Chat().ID)
	if err != nil {
		return err
	}

	if err = c.Send(reply); err != nil {
		return fmt.Errorf("failed to send farewell message: %w", err)
	}

	return nil
}

// statusHandler process command /status.
func (b *Bot) statusHandler(c telebot.Context) error {
	if err := c.Send(b.status()); err != nil {
		return fmt.Errorf("failed to send status message: %w", err)
	}

	return nil
}

func (b *Bot) subscribe(ctx context.Context, chatID int64) (string, error) {
	if err := b.repo.SubscribeChat(ctx, chatID); err != nil {
		b.log.ErrorContext(ctx, "Failed to subscribe chat", "chat_id", chatID, "error", err)
		return "", fmt.Errorf("failed to subscribe chat %d: %w", chatID, err)
	}

	return "Hello! You will now receive catalog change notifications. Send /stop to unsubscribe.", nil
}

func (b *Bot) unsubscribe(ctx context.Context, chatID int64) (string, error) {
	err := b.repo.UnsubscribeChat(ctx, chatID)
	switch {
	case errors.Is(err, repository.ErrChatNotSubscribed):
		return "This chat is not subscribed. Send /start to subscribe.", nil
	case err != nil:
		b.log.ErrorContext(ctx, "Failed to unsubscribe chat", "chat_id", chatID, "error", err)
		return "", fmt.Errorf("failed to unsubscribe chat %d: %w", chatID, err)
	}

	return "Unsubscribed. Send /start to subscribe again.", nil
}

func (b *Bot) status() string {
	if len(b.productIDs) == 0 {
		return "No products are tracked."
	}

	ids := make([]string, 0, len(b.productIDs))
	for _, id := range b.productIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	return "Tracked products: " + strings.Join(ids, ", ")
}
