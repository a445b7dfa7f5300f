// Package deps provides typed, lazily resolved dependency handles.
// A Handle resolves at most once per process; later callers get the
// cached value or the cached failure.
package deps

import (
	"context"
	"fmt"
	"sync"

	"storelocator/platform/logger"
)

// LoadError reports a dependency that could not be resolved.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dependency %s failed to load: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadFunc resolves a dependency value.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Handle is a future-like reference to a dependency of type T.
type Handle[T any] struct {
	name string
	load LoadFunc[T]
	log  *logger.Logger

	mu      sync.Mutex
	done    chan struct{}
	started bool
	value   T
	err     error
}

// New creates a handle. Nothing is loaded until the first Get.
func New[T any](name string, load LoadFunc[T], log *logger.Logger) *Handle[T] {
	return &Handle[T]{
		name: name,
		load: load,
		log:  log,
		done: make(chan struct{}),
	}
}

// Resolved creates a handle that is already satisfied with value.
func Resolved[T any](name string, value T) *Handle[T] {
	h := &Handle[T]{name: name, done: make(chan struct{}), started: true, value: value}
	close(h.done)
	return h
}

// Name returns the dependency name.
func (h *Handle[T]) Name() string {
	return h.name
}

// Get starts the load on first use and waits for the result. The load
// runs detached from ctx so that one impatient caller cannot poison the
// cached result for everyone else; ctx only bounds the wait.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	h.mu.Lock()
	if !h.started {
		h.started = true
		go h.run(context.WithoutCancel(ctx))
	}
	h.mu.Unlock()

	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		return zero, &LoadError{Name: h.name, Err: ctx.Err()}
	}
}

func (h *Handle[T]) run(ctx context.Context) {
	value, err := h.load(ctx)
	if err != nil {
		err = &LoadError{Name: h.name, Err: err}
	}
	if h.log != nil {
		h.log.DependencyLoad(h.name, err)
	}
	h.value, h.err = value, err
	close(h.done)
}
