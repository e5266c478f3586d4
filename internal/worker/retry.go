package worker

import "time"

// RetryPolicy governs how failed audit tasks are rescheduled. Delays
// grow geometrically per attempt up to MaxDelay; once MaxRetries is
// exhausted the task goes to the dead-letter list.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultAuditRetryPolicy matches the cadence of the audit sheet:
// appends are not urgent, so retries start slow and cap at a minute.
func DefaultAuditRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}
}

// withDefaults fills any zero field from DefaultAuditRetryPolicy, so a
// partially configured policy still behaves.
func (r RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultAuditRetryPolicy()
	if r.MaxRetries == 0 {
		r.MaxRetries = def.MaxRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = def.InitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = def.MaxDelay
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = def.BackoffFactor
	}
	return r
}

// NextDelay returns how long to wait before the given attempt.
// Attempt 1 waits InitialDelay, each further attempt multiplies by
// BackoffFactor, clamped at MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	r = r.withDefaults()

	d := r.InitialDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * r.BackoffFactor)
		if d >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	return d
}
