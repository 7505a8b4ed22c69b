package inbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/mailclerk/internal/logging"
)

// DefaultInterval is the inbox check schedule.
const DefaultInterval = 5 * time.Minute

// lateGrace is how far past the expected tick a fire may land before it is
// reported as past due. Timer jitter under normal load stays well below this.
const lateGrace = 30 * time.Second

// Checker periodically checks the mailbox for new messages.
type Checker struct {
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithInterval overrides the check interval.
func WithInterval(interval time.Duration) Option {
	return func(c *Checker) {
		c.interval = interval
	}
}

// withClock substitutes the time source. Test hook.
func withClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// NewChecker creates a Checker with the default five minute interval.
func NewChecker(logger *slog.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Checker{
		interval: DefaultInterval,
		logger:   logging.WithService(logger, "inbox"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run blocks, checking the inbox on every tick until the context is
// cancelled.
func (c *Checker) Run(ctx context.Context) error {
	c.logger.Info("inbox checker started", slog.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	expected := c.now().Add(c.interval)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("inbox checker stopped")
			return ctx.Err()
		case <-ticker.C:
			c.check(ctx, expected)
			expected = c.now().Add(c.interval)
		}
	}
}

// check performs one inbox pass. Ingestion is not wired up yet, so this
// logs the tick and its lateness only.
func (c *Checker) check(_ context.Context, expected time.Time) {
	fired := c.now()
	if delay := fired.Sub(expected); delay > lateGrace {
		c.logger.Warn("inbox check fired past due",
			logging.Operation("inbox.check"),
			slog.Duration("delay", delay),
		)
	}
	c.logger.Info("inbox check executed",
		logging.Operation("inbox.check"),
		logging.Status(logging.StatusSuccess),
	)
}
