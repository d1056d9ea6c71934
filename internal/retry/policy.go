// Package retry holds the backoff policy applied to transient transfer failures.
package retry

import (
	"context"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

// BackoffMode selects how the delay grows between attempts.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// Policy encapsulates retry/backoff settings. It is immutable after construction.
// The zero Policy never retries.
type Policy struct {
	Mode       BackoffMode
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // attempts after the first failure
}

// DefaultPolicy returns the policy used when retries are enabled without further
// settings: linear, 1s initial, 30s cap, no retries.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffLinear, Initial: time.Second, Max: 30 * time.Second}
}

// ParseMode maps free-form input onto a mode. Empty input yields linear.
func ParseMode(raw string) (BackoffMode, error) {
	switch m := BackoffMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return BackoffLinear, nil
	case BackoffFixed, BackoffLinear, BackoffExponential:
		return m, nil
	default:
		return "", errors.ConfigError("invalid retry backoff mode").
			WithContext("mode", raw).
			WithContext("allowed", "fixed|linear|exponential").
			Build()
	}
}

// NewPolicy builds a policy from raw config fields; zero values fall back to defaults.
func NewPolicy(mode BackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries > 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if mode != "" {
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff before the given retry (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case BackoffFixed:
		d = p.Initial
	case BackoffExponential:
		if retryCount > 32 {
			return p.Max
		}
		d = p.Initial * (1 << (retryCount - 1))
	default:
		d = time.Duration(retryCount) * p.Initial
	}
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

// Validate reports a config error for policies that cannot be applied.
func (p Policy) Validate() error {
	switch {
	case p.MaxRetries < 0:
		return errors.ConfigError("retry count cannot be negative").WithContext("retries", p.MaxRetries).Build()
	case p.MaxRetries > 0 && p.Initial <= 0:
		return errors.ConfigError("retry delay must be positive").WithContext("initial", p.Initial.String()).Build()
	case p.MaxRetries > 0 && p.Max <= 0:
		return errors.ConfigError("retry delay cap must be positive").WithContext("max", p.Max.String()).Build()
	}
	return nil
}

// Do calls fn until it succeeds, retryable reports false, or MaxRetries retries
// have been made. onRetry, when set, is called before each wait. Cancelling ctx
// during a wait returns the last error.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, onRetry func(retry int, delay time.Duration, err error), fn func() error) error {
	err := fn()
	for retry := 1; err != nil && retry <= p.MaxRetries && retryable(err); retry++ {
		delay := p.Delay(retry)
		if onRetry != nil {
			onRetry(retry, delay, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		err = fn()
	}
	return err
}
