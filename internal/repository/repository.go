// Package repository declares the storage contracts used by the Telegram sink.
package repository

import (
	"context"
	"errors"
)

// ErrChatNotSubscribed is returned when unsubscribing a chat that has no subscription.
var ErrChatNotSubscribed = errors.New("chat is not subscribed")

// SubscriptionRepository stores the Telegram chats that receive notifications.
type SubscriptionRepository interface {
	// SubscribeChat adds the chat. Subscribing twice is not an error.
	SubscribeChat(ctx context.Context, chatID int64) error
	// UnsubscribeChat removes the chat or returns ErrChatNotSubscribed.
	UnsubscribeChat(ctx context.Context, chatID int64) error
	// GetSubscribedChats returns every subscribed chat id.
	GetSubscribedChats(ctx context.Context) ([]int64, error)
}
