package genjob

import (
	"context"
	"fmt"
	"time"
)

// Poll defaults applied when the caller leaves the knobs zero.
const (
	DefaultPollInterval = 8 * time.Second
	DefaultPollMaxWait  = 10 * time.Minute
	DefaultMaxAttempts  = 75
)

// Poller repeatedly queries a job's status at a fixed interval until the
// provider reports a terminal state or the budget runs out. The first probe
// is issued immediately; there is no backoff.
type Poller struct {
	Client      *Client
	Interval    time.Duration
	MaxWait     time.Duration
	MaxAttempts int
}

// Wait blocks until the job identified by requestID reaches a terminal
// status. It returns the terminal envelope on done, ErrGenerationFailed on
// failed, ErrPollTimeout when the attempt or wall-clock budget is exhausted,
// and a *TransportError on any network or decode failure. Cancelling ctx
// aborts the poll between and during attempts.
func (p *Poller) Wait(ctx context.Context, endpoint, requestID string) (*Envelope, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxWait := p.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultPollMaxWait
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		env, err := p.Client.Status(ctx, endpoint, requestID)
		if err != nil {
			return nil, err
		}
		switch {
		case env.Done():
			return env, nil
		case env.Failed():
			if msg := env.ErrorText(); msg != "" {
				return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
			}
			return nil, ErrGenerationFailed
		}

		if attempt >= maxAttempts {
			return nil, fmt.Errorf("request %s after %d attempts: %w", requestID, attempt, ErrPollTimeout)
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("request %s after %s: %w", requestID, maxWait, ErrPollTimeout)
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
