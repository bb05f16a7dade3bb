package manager

import (
	"math"
	"math/rand"
	"time"
)

// lockRetryConfig configures a small bounded backoff for acquiring a save lock,
// generalized from fleetd's internal/ferrors.Retry. The core has no
// network calls to retry (spec.md §5: "no background workers"); the one
// transient condition it tolerates is a stale advisory lock file left
// behind by a crashed process, which host tooling is expected to clear
// concurrently (spec.md §5).
type lockRetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func defaultLockRetryConfig() lockRetryConfig {
	return lockRetryConfig{
		MaxAttempts:  5,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     500 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// retryLock calls fn until it succeeds or MaxAttempts is exhausted,
// returning fn's last error. fn should be idempotent.
func retryLock(cfg lockRetryConfig, fn func() error) error {
	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(rand.Int63n(int64(delay) / 4 + 1))
			time.Sleep(delay + jitter)
			delay = time.Duration(math.Min(float64(cfg.MaxDelay), float64(delay)*cfg.Multiplier))
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return lastErr
}
