package worker

import "time"

// RetryPolicy controls how failed spreadsheet tasks are rescheduled.
// A zero value falls back to one-second steps doubling per attempt.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Exhausted reports whether a task with the given retry count should go to
// the dead-letter list instead of being rescheduled.
func (r RetryPolicy) Exhausted(retryCount int) bool {
	return retryCount >= r.MaxRetries
}

// NextDelay returns the backoff before the given attempt, 1-based. The delay
// grows geometrically and is clamped to MaxDelay when one is set.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	base := r.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	delay := float64(base)
	for i := 1; i < attempt; i++ {
		delay *= factor
		if r.MaxDelay > 0 && delay >= float64(r.MaxDelay) {
			return r.MaxDelay
		}
	}

	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}
