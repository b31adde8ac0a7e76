package client

import "time"

// Backoff produces the growing delay schedule between reconnection attempts.
// Next returns the delay to wait before the coming attempt and then grows
// the schedule; Reset snaps it back to the base delay after a successful
// open. Delays are monotonically non-decreasing between resets and never
// exceed the cap.
type Backoff struct {
	base       time.Duration
	max        time.Duration
	multiplier float64
	current    time.Duration
}

func NewBackoff(base, max time.Duration, multiplier float64) *Backoff {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if max < base {
		max = base
	}
	if multiplier < 1 {
		multiplier = 1
	}
	return &Backoff{base: base, max: max, multiplier: multiplier, current: base}
}

// Next returns the current delay and advances the schedule.
func (b *Backoff) Next() time.Duration {
	d := b.current
	grown := time.Duration(float64(b.current) * b.multiplier)
	if grown > b.max {
		grown = b.max
	}
	b.current = grown
	return d
}

// Reset returns the schedule to the base delay.
func (b *Backoff) Reset() {
	b.current = b.base
}

// Current reports the delay the next Next call will return.
func (b *Backoff) Current() time.Duration {
	return b.current
}
