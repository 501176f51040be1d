package adapters

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/skosovsky/tutorsy"
)

// Registry holds adapters and invokes them with timeout, semaphore, and
// panic recovery. It implements tutorsy.Invoker. Unknown tool names yield an
// error wrapping tutorsy.ErrNoAdapter so the engine records a per-tool error
// instead of failing the request.
type Registry struct {
	mu       sync.Mutex
	adapters map[string]Adapter
	sem      chan struct{}
	opts     registryOptions
	done     chan struct{}
	running  sync.WaitGroup
}

// NewRegistry creates a Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		timeout:        5 * time.Second,
		maxConcurrency: 10,
		recoverPanics:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Registry{
		adapters: make(map[string]Adapter),
		sem:      sem,
		opts:     o,
		done:     make(chan struct{}),
	}
}

// Register adds an adapter, replacing any existing adapter with the same
// name. Safe for concurrent use with Invoke.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get returns the adapter with the given name, or (nil, false) if not found.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered adapter names, sorted for deterministic order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Invoke runs one adapter call. A malformed result or panic is converted into
// an error for that call only; the after-invoke hook (WithOnAfterInvoke) is
// always called with the final outcome.
func (r *Registry) Invoke(ctx context.Context, tool string, payload map[string]any) (result map[string]any, err error) {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil, tutorsy.ErrShutdown
	default:
	}
	adapter, ok := r.adapters[tool]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", tutorsy.ErrNoAdapter, tool)
	}
	r.running.Add(1)
	r.mu.Unlock()
	defer r.running.Done()

	if err := r.acquireSemaphore(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, tutorsy.ErrToolTimeout
		}
		return nil, err
	}
	defer r.releaseSemaphore()

	if r.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, tool, err, time.Since(start))
		}
	}()
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				result = nil
				err = &tutorsy.SystemError{Err: fmt.Errorf("adapter %s panicked: %v", tool, p)}
			}
		}()
	}

	result, err = adapter.Invoke(ctx, payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", tutorsy.ErrToolTimeout, tool)
		}
		return nil, err
	}
	if result == nil {
		return nil, &tutorsy.SystemError{Err: fmt.Errorf("adapter %s returned no result", tool)}
	}
	return result, nil
}

func (r *Registry) acquireSemaphore(ctx context.Context) error {
	if r.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) releaseSemaphore() {
	if r.sem != nil {
		<-r.sem
	}
}

// Shutdown closes the registry for new calls and waits for in-flight
// invocations or ctx to cancel.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil
	default:
		close(r.done)
	}
	r.mu.Unlock()
	finished := make(chan struct{})
	go func() {
		r.running.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ tutorsy.Invoker = (*Registry)(nil)
