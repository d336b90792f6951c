package retry

import (
	"context"
	"log/slog"
	"time"

	"tubeaudio/internal/config"
	"tubeaudio/internal/logging"
	"tubeaudio/internal/services"
)

// Policy bounds the retry loop. MaxRetries counts retries after the first
// attempt; Delay is the base of the linear backoff.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
}

// PolicyFromConfig builds a Policy from the retry section.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg == nil {
		return Policy{}
	}
	return Policy{MaxRetries: cfg.Retry.MaxRetries, Delay: cfg.RetryDelay()}
}

// Step is the transition taken after an attempt.
type Step struct {
	Terminal bool
	Retry    bool
	Delay    time.Duration
}

// Next decides what follows attempt (zero based) given its error. Permanent
// kinds and exhausted budgets are terminal; everything else retries after
// Delay*(attempt+1).
func Next(policy Policy, attempt int, err error) Step {
	if err == nil {
		return Step{Terminal: true}
	}
	if services.KindOf(err).Permanent() {
		return Step{Terminal: true}
	}
	if attempt >= policy.MaxRetries {
		return Step{Terminal: true}
	}
	delay := policy.Delay * time.Duration(attempt+1)
	if delay < 0 {
		delay = 0
	}
	return Step{Retry: true, Delay: delay}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Controller runs an operation under a Policy.
type Controller struct {
	policy Policy
	sleep  Sleeper
	logger *slog.Logger
}

// Option customizes a Controller.
type Option func(*Controller)

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s Sleeper) Option {
	return func(c *Controller) {
		if s != nil {
			c.sleep = s
		}
	}
}

// New constructs a Controller.
func New(policy Policy, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		policy: policy,
		sleep:  SleepContext,
		logger: logging.NewComponentLogger(logger, "retry"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do runs op until it succeeds, fails permanently, or the retry budget is
// spent. It returns the number of attempts made and the last error. When the
// context ends during backoff the last attempt's error is returned so its
// classification survives.
func (c *Controller) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	for attempt := 0; ; attempt++ {
		attemptCtx := services.WithAttempt(ctx, attempt)
		err := op(attemptCtx, attempt)
		step := Next(c.policy, attempt, err)
		if step.Terminal {
			if err != nil && attempt > 0 {
				logging.WithContext(attemptCtx, c.logger).Debug("retry budget ended",
					logging.ErrorKind(err),
					logging.Int("attempts", attempt+1),
				)
			}
			return attempt + 1, err
		}

		logging.WarnWithContext(logging.WithContext(attemptCtx, c.logger), "attempt failed, retrying", "retry_scheduled",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.Duration("retry_delay", step.Delay),
			logging.Int("max_retries", c.policy.MaxRetries),
			logging.String(logging.FieldErrorHint, "transient failures are retried automatically"),
			logging.String(logging.FieldImpact, "download delayed"),
		)
		if sleepErr := c.sleep(ctx, step.Delay); sleepErr != nil {
			return attempt + 1, err
		}
	}
}
