package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// ErrPublishRejected is returned when ntfy answers with a non-retryable status.
var ErrPublishRejected = errors.New("ntfy rejected the message")

const (
	defaultAttempts = 3
	defaultDelay    = time.Second
)

// Ntfy publishes notifications to a topic on an ntfy server.
type Ntfy struct {
	log       *slog.Logger
	client    *http.Client
	serverURL string
	topic     string
	token     string
	attempts  uint
	delay     time.Duration
}

// NtfyOption configures an Ntfy publisher.
type NtfyOption func(*Ntfy)

// WithNtfyHTTPClient replaces the http client used for publishing.
func WithNtfyHTTPClient(client *http.Client) NtfyOption {
	return func(n *Ntfy) { n.client = client }
}

// WithAccessToken sends the token as a bearer credential.
func WithAccessToken(token string) NtfyOption {
	return func(n *Ntfy) { n.token = token }
}

// WithRetry sets the number of publish attempts and the initial backoff delay.
func WithRetry(attempts uint, delay time.Duration) NtfyOption {
	return func(n *Ntfy) {
		if attempts > 0 {
			n.attempts = attempts
		}
		if delay > 0 {
			n.delay = delay
		}
	}
}

// NewNtfy creates a publisher for topic on serverURL.
func NewNtfy(log *slog.Logger, serverURL, topic string, opts ...NtfyOption) *Ntfy {
	n := &Ntfy{
		log:       log,
		client:    &http.Client{Timeout: 30 * time.Second},
		serverURL: serverURL,
		topic:     topic,
		attempts:  defaultAttempts,
		delay:     defaultDelay,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

type ntfyMessage struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
	Click    string   `json:"click,omitempty"`
	Markdown bool     `json:"markdown"`
}

// Notify publishes n. Transport errors, 429 and 5xx answers are retried.
func (n *Ntfy) Notify(ctx context.Context, notif Notification) error {
	const opn = "notification.Ntfy.Notify"
	log := n.log.With("op", opn, "topic", n.topic)

	body, err := json.Marshal(ntfyMessage{
		Topic:    n.topic,
		Title:    notif.Title,
		Message:  notif.Message,
		Priority: notif.Priority,
		Tags:     notif.Tags,
		Click:    notif.Click,
		Markdown: true,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to marshal message: %w", opn, err)
	}

	err = retry.Do(
		func() error {
			return n.publish(ctx, log, body)
		},
		retry.Attempts(n.attempts),
		retry.Delay(n.delay),
		retry.MaxDelay(time.Minute),
		retry.MaxJitter(n.delay),
		retry.Context(ctx),
		retry.OnRetry(func(attempt uint, err error) {
			log.WarnContext(ctx, "Retrying ntfy publish after error", "attempt", attempt, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

func (n *Ntfy) publish(ctx context.Context, log *slog.Logger, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.serverURL, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to %s: %w", n.serverURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		log.DebugContext(ctx, "Notification published", "status code", resp.StatusCode)
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("status code error: [%d] %s", resp.StatusCode, resp.Status)
	default:
		return retry.Unrecoverable(fmt.Errorf("%w: [%d] %s", ErrPublishRejected, resp.StatusCode, resp.Status))
	}
}
