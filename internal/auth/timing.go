package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for timing attack prevention
type TimingConfig struct {
	BaseDelayMs    int  // Base delay in milliseconds
	RandomDelayMs  int  // Random delay range in milliseconds
	DelayOnSuccess bool // If true, delay even on successful login
}

// TimingDelay pads failed logins so "unknown user", "wrong password" and
// "locked out" answers take about the same time.
type TimingDelay struct {
	config TimingConfig
	sleep  func(time.Duration)
	since  func(time.Time) time.Duration
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{
		config: config,
		sleep:  time.Sleep,
		since:  time.Since,
	}
}

// NewTimingDelayWithSleep is NewTimingDelay with the sleep function replaced,
// for tests.
func NewTimingDelayWithSleep(config TimingConfig, sleep func(time.Duration), since func(time.Time) time.Duration) *TimingDelay {
	return &TimingDelay{
		config: config,
		sleep:  sleep,
		since:  since,
	}
}

// cryptoRandIntn returns a secure random number in [0, max).
func cryptoRandIntn(max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return 0, err
	}

	return int(binary.BigEndian.Uint64(randomBytes) % uint64(max)), nil
}

func (td *TimingDelay) target() time.Duration {
	delay := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.RandomDelayMs > 0 {
		if jitter, err := cryptoRandIntn(td.config.RandomDelayMs); err == nil {
			delay += time.Duration(jitter) * time.Millisecond
		}
	}
	return delay
}

// WaitFrom sleeps until at least the target delay has passed since start.
// Successful attempts return immediately unless DelayOnSuccess is set.
func (td *TimingDelay) WaitFrom(start time.Time, success bool) {
	if td == nil || (success && !td.config.DelayOnSuccess) {
		return
	}

	if remaining := td.target() - td.since(start); remaining > 0 {
		td.sleep(remaining)
	}
}
