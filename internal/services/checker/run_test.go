package checker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Houeta/catalog-flow/internal/models"
	"github.com/Houeta/catalog-flow/internal/services/checker"
	"github.com/Houeta/catalog-flow/test/mocks"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	pollInterval  = 50 * time.Second
	retryInterval = 20 * time.Second
	shortWait     = 5 * time.Second
)

func TestChecker_Run(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	clk := testclock.NewClock(time.Now())
	fetched := make(chan struct{}, 10)
	signal := func(mock.Arguments) { fetched <- struct{}{} }

	initial := map[int64]models.Product{100: mug("Red Mug")}

	mockFetcher := mocks.NewFetcher(t)
	mockNotifier := mocks.NewNotifier(t)
	// initialize fails, is retried, then one failed and one successful tick
	mockFetcher.On("FetchProducts", mock.Anything, trackedIDs).Return(nil, assert.AnError).Run(signal).Once()
	mockFetcher.On("FetchProducts", mock.Anything, trackedIDs).Return(initial, nil).Run(signal).Once()
	mockFetcher.On("FetchProducts", mock.Anything, trackedIDs).Return(nil, assert.AnError).Run(signal).Once()
	mockFetcher.On("FetchProducts", mock.Anything, trackedIDs).Return(initial, nil).Run(signal).Once()

	c := checker.NewChecker(logger, mockFetcher, newFormatter(t), mockNotifier, trackedIDs, checker.WithClock(clk))

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, pollInterval, retryInterval) }()

	waitFetch := func() {
		t.Helper()
		select {
		case <-fetched:
		case <-time.After(shortWait):
			t.Fatal("timed out waiting for fetch")
		}
	}

	// failed initialize, then retry delay
	waitFetch()
	require.NoError(t, clk.WaitAdvance(retryInterval, shortWait, 1))

	// successful initialize, then poll delay
	waitFetch()
	require.NoError(t, clk.WaitAdvance(pollInterval, shortWait, 1))

	// failed tick, then retry delay
	waitFetch()
	require.NoError(t, clk.WaitAdvance(retryInterval, shortWait, 1))

	// successful tick
	waitFetch()
	require.NoError(t, clk.WaitAdvance(0, shortWait, 1))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shortWait):
		t.Fatal("Run did not stop after cancellation")
	}

	assert.Equal(t, initial, c.Previous())
}

func TestChecker_Run_StopsWhileWaiting(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(t.Context())

	clk := testclock.NewClock(time.Now())
	mockFetcher := mocks.NewFetcher(t)
	mockFetcher.On("FetchProducts", mock.Anything, trackedIDs).Return(nil, assert.AnError).Once()

	c := checker.NewChecker(logger, mockFetcher, newFormatter(t), mocks.NewNotifier(t), trackedIDs, checker.WithClock(clk))

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, pollInterval, retryInterval) }()

	// wait until Run is parked on the retry timer, then cancel without advancing
	require.NoError(t, clk.WaitAdvance(0, shortWait, 1))
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shortWait):
		t.Fatal("Run did not stop after cancellation")
	}
}
