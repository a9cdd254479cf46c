package ratelimit

import (
	"context"
	"fmt"
	"time"

	"tournament-tracker/internal/constants"
	"tournament-tracker/internal/domain"
	"tournament-tracker/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Policy bounds the retry behavior applied to every upstream call.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: constants.RetryMaxAttempts,
		BaseDelay:   constants.RetryBaseDelay,
		Jitter:      constants.RetryJitter,
	}
}

// Governor wraps every upstream call: it bounds the number of in-flight
// requests and retries throttled or failed calls with exponential backoff.
// Client errors (bad id, not found) propagate immediately.
type Governor struct {
	sem     chan struct{}
	policy  Policy
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func New(m *metrics.Metrics, logger zerolog.Logger) *Governor {
	return NewWithPolicy(constants.MaxInFlightRequests, DefaultPolicy(), m, logger)
}

func NewWithPolicy(maxInFlight int, policy Policy, m *metrics.Metrics, logger zerolog.Logger) *Governor {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Governor{
		sem:     make(chan struct{}, maxInFlight),
		policy:  policy,
		metrics: m,
		logger:  logger,
	}
}

// Do runs fn under the in-flight bound. Retryable failures are re-attempted
// with jittered exponential backoff; exhausting the budget surfaces
// ErrUpstreamUnavailable.
func (g *Governor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case g.sem <- struct{}{}:
		defer func() { <-g.sem }()
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, ctx.Err())
	}

	attempt := 0
	var backoff retry.Backoff = retry.WithMaxRetries(uint64(g.policy.MaxAttempts-1),
		retry.NewExponential(g.policy.BaseDelay))
	if g.policy.Jitter > 0 {
		backoff = retry.WithJitter(g.policy.Jitter, backoff)
	}

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if domain.IsRetryable(err) {
			if attempt < g.policy.MaxAttempts {
				g.metrics.UpstreamRetries.Inc()
				g.logger.Warn().Err(err).Int("attempt", attempt).Msg("upstream call failed, backing off")
			}
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if domain.IsRetryable(err) {
		return fmt.Errorf("%w: retry budget exhausted after %d attempts: %v", domain.ErrUpstreamUnavailable, attempt, err)
	}
	return err
}
