package checker

import (
	"context"
	"time"
)

// Run initializes the checker and then ticks until ctx is canceled. A failed
// initialization or fetch is retried after retryInterval, a successful cycle is
// followed by pollInterval. Returns nil once ctx is done.
func (c *Checker) Run(ctx context.Context, pollInterval, retryInterval time.Duration) error {
	log := c.log.With("op", "checker.Run")

	for {
		err := c.Initialize(ctx)
		if err == nil {
			break
		}

		log.ErrorContext(ctx, "Initialization failed, retrying", "retry_in", retryInterval, "error", err)
		if !c.wait(ctx, retryInterval) {
			return nil
		}
	}

	delay := pollInterval
	for {
		if !c.wait(ctx, delay) {
			log.InfoContext(ctx, "Checker stopped")
			return nil
		}

		if _, err := c.Tick(ctx); err != nil {
			log.ErrorContext(ctx, "Check failed, retrying", "retry_in", retryInterval, "error", err)
			delay = retryInterval
			continue
		}

		delay = pollInterval
	}
}

// wait blocks for d or until ctx is done. Reports whether the full delay elapsed.
func (c *Checker) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(d):
		return ctx.Err() == nil
	}
}
