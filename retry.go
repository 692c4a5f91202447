package docforge

import (
	"context"
	"strings"
	"time"
)

// DefaultMaxAttempts bounds retries of a single strategy.
const DefaultMaxAttempts = 3

// backoffDelays is the retry schedule for transient failures.
var backoffDelays = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

// RetryPolicy controls retries of one strategy attempt. Only transient
// failures are retried; failures carrying a renderer diagnostic fall
// through to the next strategy immediately.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries per strategy, including
	// the first. Values below 1 behave as 1.
	MaxAttempts int

	// Delay maps a zero-based attempt number to the pause before the
	// next try. Nil means ExpBackoff.
	Delay func(attempt int) time.Duration
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.Delay != nil {
		return p.Delay(attempt)
	}
	return ExpBackoff(attempt)
}

// ExpBackoff returns the standard backoff delay for a zero-based
// attempt number, capped at the last schedule entry.
func ExpBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(backoffDelays) {
		attempt = len(backoffDelays) - 1
	}
	return backoffDelays[attempt]
}

// diagnosticPatterns identify renderer output that names a specific
// cause. Retrying the identical command cannot change such outcomes.
var diagnosticPatterns = []string{
	"! LaTeX Error",
	"! Package",
	"! Undefined control sequence",
	"! Emergency stop",
	"not found",
	"Unknown option",
	"fontspec",
	"Cannot load",
	"could not find",
	"Unknown input format",
	"Unknown output format",
}

// diagnostic reports whether renderer output carries an identifiable
// failure cause.
func diagnostic(output string) bool {
	for _, p := range diagnosticPatterns {
		if strings.Contains(output, p) {
			return true
		}
	}
	return false
}

// sleepCtx pauses for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
