package checker_test

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/Houeta/catalog-flow/internal/models"
	"github.com/Houeta/catalog-flow/internal/notification"
	"github.com/Houeta/catalog-flow/internal/services/checker"
	"github.com/Houeta/catalog-flow/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var trackedIDs = []int64{100, 200}

func newFormatter(t *testing.T) *notification.Formatter {
	t.Helper()

	baseURL, err := url.Parse("https://shop.example.com")
	require.NoError(t, err)

	return notification.NewFormatter(baseURL)
}

func mug(title string, variants ...models.Variant) models.Product {
	return models.Product{ID: 100, Title: title, Handle: "mug", BodyHTML: "<p>mug</p>", Variants: variants}
}

func TestChecker_Tick(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	baseline := map[int64]models.Product{
		100: mug("Red Mug", variant(1, "10.00", true)),
	}

	testCases := []struct {
		name            string
		current         map[int64]models.Product
		setupNotifier   func(n *mocks.Notifier)
		expectedChanges []models.ProductChange
	}{
		{
			name:            "No change",
			current:         baseline,
			setupNotifier:   func(_ *mocks.Notifier) {},
			expectedChanges: nil,
		},
		{
			name: "Availability and price change of one variant",
			current: map[int64]models.Product{
				100: mug("Red Mug", variant(1, "12.50", false)),
			},
			setupNotifier: func(n *mocks.Notifier) {
				n.On("Notify", ctx, mock.MatchedBy(func(notif notification.Notification) bool {
					return notif.Title == "Variant 1 Availability Update" &&
						notif.Click == "https://shop.example.com/products/mug"
				})).Return(nil).Once()
				n.On("Notify", ctx, mock.MatchedBy(func(notif notification.Notification) bool {
					return notif.Title == "Price Update for Variant 1"
				})).Return(nil).Once()
			},
			expectedChanges: []models.ProductChange{
				{
					Product: mug("Red Mug", variant(1, "12.50", false)),
					Change:  models.VariantAvailabilityChanged{VariantID: 1, OldAvailable: true, NewAvailable: false},
				},
				{
					Product: mug("Red Mug", variant(1, "12.50", false)),
					Change:  models.VariantPriceChanged{VariantID: 1, OldPrice: "10.00", NewPrice: "12.50"},
				},
			},
		},
		{
			name: "New product id is recorded silently",
			current: map[int64]models.Product{
				100: baseline[100],
				200: {ID: 200, Title: "Egg Cup", Variants: []models.Variant{variant(5, "3.00", true)}},
			},
			setupNotifier:   func(_ *mocks.Notifier) {},
			expectedChanges: nil,
		},
		{
			name: "Notification failure does not stop the cycle",
			current: map[int64]models.Product{
				100: mug("Red Mug v2", variant(1, "10.00", true), variant(2, "11.00", true)),
			},
			setupNotifier: func(n *mocks.Notifier) {
				n.On("Notify", ctx, mock.Anything).Return(errors.New("ntfy down")).Once()
				n.On("Notify", ctx, mock.Anything).Return(nil).Once()
			},
			expectedChanges: []models.ProductChange{
				{
					Product: mug("Red Mug v2", variant(1, "10.00", true), variant(2, "11.00", true)),
					Change:  models.TitleChanged{Old: "Red Mug", New: "Red Mug v2"},
				},
				{
					Product: mug("Red Mug v2", variant(1, "10.00", true), variant(2, "11.00", true)),
					Change:  models.VariantAdded{Variant: variant(2, "11.00", true)},
				},
			},
		},
		{
			name:            "Product missing from the catalog is dropped from the table",
			current:         map[int64]models.Product{},
			setupNotifier:   func(_ *mocks.Notifier) {},
			expectedChanges: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockFetcher := mocks.NewFetcher(t)
			mockNotifier := mocks.NewNotifier(t)
			mockFetcher.On("FetchProducts", ctx, trackedIDs).Return(baseline, nil).Once()
			mockFetcher.On("FetchProducts", ctx, trackedIDs).Return(tc.current, nil).Once()
			tc.setupNotifier(mockNotifier)

			c := checker.NewChecker(logger, mockFetcher, newFormatter(t), mockNotifier, trackedIDs)
			require.NoError(t, c.Initialize(ctx))

			changes, err := c.Tick(ctx)

			require.NoError(t, err)
			assert.Equal(t, tc.expectedChanges, changes)
			assert.Equal(t, tc.current, c.Previous())
		})
	}
}

func TestChecker_Tick_FetchFailureKeepsTable(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	baseline := map[int64]models.Product{100: mug("Red Mug")}

	mockFetcher := mocks.NewFetcher(t)
	mockNotifier := mocks.NewNotifier(t)
	mockFetcher.On("FetchProducts", ctx, trackedIDs).Return(baseline, nil).Once()
	mockFetcher.On("FetchProducts", ctx, trackedIDs).Return(nil, assert.AnError).Once()
	mockFetcher.On("FetchProducts", ctx, trackedIDs).
		Return(map[int64]models.Product{100: mug("Red Mug v2")}, nil).Once()
	mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n notification.Notification) bool {
		return n.Message == "Changed from 'Red Mug' to 'Red Mug v2'"
	})).Return(nil).Once()

	c := checker.NewChecker(logger, mockFetcher, newFormatter(t), mockNotifier, trackedIDs)
	require.NoError(t, c.Initialize(ctx))

	changes, err := c.Tick(ctx)
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, changes)
	assert.Equal(t, baseline, c.Previous())

	changes, err = c.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.TitleChanged{Old: "Red Mug", New: "Red Mug v2"}, changes[0].Change)
}

func TestChecker_Initialize(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("tick before initialize", func(t *testing.T) {
		c := checker.NewChecker(logger, mocks.NewFetcher(t), newFormatter(t), mocks.NewNotifier(t), trackedIDs)

		_, err := c.Tick(ctx)

		require.ErrorIs(t, err, checker.ErrNotInitialized)
	})

	t.Run("failed initialize stays uninitialized", func(t *testing.T) {
		mockFetcher := mocks.NewFetcher(t)
		mockFetcher.On("FetchProducts", ctx, trackedIDs).Return(nil, assert.AnError).Once()
		c := checker.NewChecker(logger, mockFetcher, newFormatter(t), mocks.NewNotifier(t), trackedIDs)

		err := c.Initialize(ctx)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "checker.Initialize")

		_, err = c.Tick(ctx)
		require.ErrorIs(t, err, checker.ErrNotInitialized)
	})

	t.Run("initial load never notifies", func(t *testing.T) {
		mockFetcher := mocks.NewFetcher(t)
		initial := map[int64]models.Product{100: mug("Red Mug", variant(1, "1.00", true))}
		mockFetcher.On("FetchProducts", ctx, trackedIDs).Return(initial, nil).Once()
		c := checker.NewChecker(logger, mockFetcher, newFormatter(t), mocks.NewNotifier(t), trackedIDs)

		require.NoError(t, c.Initialize(ctx))
		assert.Equal(t, initial, c.Previous())
	})
}
