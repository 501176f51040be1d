package adapters

import (
	"context"
	"time"
)

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	timeout        time.Duration
	maxConcurrency int
	recoverPanics  bool
	onAfter        func(ctx context.Context, tool string, err error, d time.Duration)
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) RegistryOption {
	return func(o *registryOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits concurrent invocations (semaphore). Pass 0 or
// negative to disable the semaphore.
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics enables panic recovery in Invoke (returns SystemError).
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithOnAfterInvoke sets a hook called after each invocation with its
// outcome and duration.
func WithOnAfterInvoke(fn func(ctx context.Context, tool string, err error, d time.Duration)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
