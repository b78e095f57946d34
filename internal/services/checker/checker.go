package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/Houeta/catalog-flow/internal/models"
	"github.com/Houeta/catalog-flow/internal/notification"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

// ErrNotInitialized is returned by Tick before a successful Initialize.
var ErrNotInitialized = errors.New("checker is not initialized")

// Fetcher retrieves the current snapshots of the tracked products.
type Fetcher interface {
	FetchProducts(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

// Formatter renders a change of a product as a notification.
type Formatter interface {
	Format(change models.Change, product models.Product) notification.Notification
}

// Checker is an orchestrator that performs a full verification cycle.
// It owns the previous-snapshot table and must be driven from a single goroutine.
type Checker struct {
	log        *slog.Logger
	fetcher    Fetcher
	formatter  Formatter
	notifier   notification.Notifier
	clock      clock.Clock
	productIDs []int64

	ready    bool
	previous map[int64]models.Product
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock replaces the wall clock used by Run.
func WithClock(clk clock.Clock) Option {
	return func(c *Checker) { c.clock = clk }
}

// NewChecker creates a new Checker instance tracking productIDs.
func NewChecker(
	log *slog.Logger,
	fetcher Fetcher,
	formatter Formatter,
	notifier notification.Notifier,
	productIDs []int64,
	opts ...Option,
) *Checker {
	c := &Checker{
		log:        log,
		fetcher:    fetcher,
		formatter:  formatter,
		notifier:   notifier,
		clock:      clock.WallClock,
		productIDs: slices.Clone(productIDs),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Initialize fetches the tracked products once and adopts them as the baseline
// without diffing. A failed fetch leaves the checker uninitialized.
func (c *Checker) Initialize(ctx context.Context) error {
	const opn = "checker.Initialize"
	log := c.log.With("op", opn)

	log.InfoContext(ctx, "Fetching initial product state")
	current, err := c.fetcher.FetchProducts(ctx, c.productIDs)
	if err != nil {
		return fmt.Errorf("%s: failed to fetch products: %w", opn, err)
	}

	c.previous = current
	c.ready = true
	log.InfoContext(ctx, "Initial state loaded", "products", len(current))

	return nil
}

// Tick fetches the current snapshots, diffs every product known from the previous
// cycle, dispatches a notification per change and adopts the new snapshots.
// Only a fetch failure is returned; notification failures are logged and skipped.
func (c *Checker) Tick(ctx context.Context) ([]models.ProductChange, error) {
	const opn = "checker.Tick"
	if !c.ready {
		return nil, fmt.Errorf("%s: %w", opn, ErrNotInitialized)
	}
	log := c.log.With("op", opn, "cycle_id", uuid.NewString())

	log.DebugContext(ctx, "Fetching products to check for updates")
	current, err := c.fetcher.FetchProducts(ctx, c.productIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch products: %w", opn, err)
	}

	var (
		detected []models.ProductChange
		failed   int
	)

	for _, id := range slices.Sorted(maps.Keys(current)) {
		product := current[id]

		previous, found := c.previous[id]
		if !found {
			log.InfoContext(ctx, "New product detected, recording baseline", "product_id", id)
			continue
		}

		for _, change := range DetectChanges(previous, product) {
			detected = append(detected, models.ProductChange{Product: product, Change: change})

			n := c.formatter.Format(change, product)
			log.InfoContext(ctx, "Sending notification",
				"product_id", id, "kind", change.Kind(), "title", n.Title)

			if err = c.notifier.Notify(ctx, n); err != nil {
				failed++
				log.ErrorContext(ctx, "Failed to send notification",
					"product_id", id, "kind", change.Kind(), "error", err)
			}
		}
	}

	c.previous = current

	log.InfoContext(ctx, "Change detection complete",
		"products", len(current),
		"changes", len(detected),
		"failed_notifications", failed,
	)

	return detected, nil
}

// Previous returns a copy of the previous-snapshot table.
func (c *Checker) Previous() map[int64]models.Product {
	return maps.Clone(c.previous)
}
