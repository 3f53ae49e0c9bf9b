package api

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultProbeInterval is the fixed delay between health polls.
	DefaultProbeInterval = 250 * time.Millisecond
	// DefaultProbeTimeout bounds one whole probe attempt.
	DefaultProbeTimeout = 10 * time.Second
)

// ProbeOptions tunes WaitHealthy. Zero values take the defaults.
type ProbeOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

// WaitHealthy polls the health endpoint on a fixed interval until the
// server reports healthy or the timeout elapses. On timeout the returned
// error is the last observed failure reason, not a generic timeout.
func WaitHealthy(ctx context.Context, c *Client, opts ProbeOptions) (HealthStatus, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	// Constant-interval polling with an elapsed-time cap; Retry hands back
	// the last attempt's error when it gives up.
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(interval),
		backoff.WithMaxInterval(interval),
		backoff.WithMultiplier(1),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(timeout),
	)

	var status HealthStatus
	attempt := func() error {
		got, err := c.Health(ctx)
		if err != nil {
			return err
		}
		if !got.Healthy {
			reason := got.Reason
			if reason == "" {
				reason = "server reports unhealthy"
			}
			return fmt.Errorf("server not ready: %s", reason)
		}
		status = got
		return nil
	}

	if err := backoff.Retry(attempt, backoff.WithContext(policy, ctx)); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}
