package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

type retryingProvider struct {
	inner   Provider
	policy  RetryConfig
	timeout time.Duration
}

// WithRetry wraps p so that retryable failures are tried again with
// exponential backoff, up to policy.MaxAttempts in total. An invalid
// response is retried at most once. A positive timeout bounds the whole
// call including the waits.
func WithRetry(p Provider, policy RetryConfig, timeout time.Duration) Provider {
	return &retryingProvider{inner: p, policy: policy, timeout: timeout}
}

func (r *retryingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	attempts := max(r.policy.MaxAttempts, 1)
	sawInvalid := false

	var err error
	for attempt := range attempts {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !Retryable(err) || attempt == attempts-1 {
			return nil, err
		}

		var invalid *InvalidResponseError
		if errors.As(err, &invalid) {
			if sawInvalid {
				return nil, err
			}
			sawInvalid = true
		}

		wait := backoff(r.policy, attempt, err)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return nil, err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, err
}

func (r *retryingProvider) Name() string    { return r.inner.Name() }
func (r *retryingProvider) ModelID() string { return r.inner.ModelID() }

// backoff is the wait before retry number attempt+1. A rate limit with a
// Retry-After hint uses the hint. Otherwise the wait grows by Multiplier
// from InitialWait, is capped at MaxWait and gets ±20% jitter.
func backoff(policy RetryConfig, attempt int, err error) time.Duration {
	var limited *RateLimitError
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		return limited.RetryAfter
	}

	mult := policy.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(policy.InitialWait) * math.Pow(mult, float64(attempt))
	if policy.MaxWait > 0 {
		wait = math.Min(wait, float64(policy.MaxWait))
	}
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
