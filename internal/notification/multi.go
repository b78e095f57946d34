package notification

import (
	"context"
	"errors"
	"log/slog"
)

// Multi fans a notification out to several notifiers.
type Multi struct {
	log       *slog.Logger
	notifiers []Notifier
}

// NewMulti creates a fan-out notifier. Nil notifiers are skipped.
func NewMulti(log *slog.Logger, notifiers ...Notifier) *Multi {
	m := &Multi{log: log}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Notify sends n to every notifier, even when earlier ones fail, and joins the errors.
func (m *Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			m.log.WarnContext(ctx, "Notifier failed", "op", "notification.Multi.Notify", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
