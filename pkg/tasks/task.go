// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// TaskStatus represents the lifecycle state of a task row.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"     // Queued, waiting for its scheduled time
	StatusInProgress TaskStatus = "in_progress" // Claimed by a processor and currently executing
	StatusSuccess    TaskStatus = "success"     // Handler returned without error
	StatusFailure    TaskStatus = "failure"     // Handler returned an error or panicked
)

// Task mirrors one row of the tasks table.
type Task struct {
	ID            int64      // SERIAL primary key
	Name          string     // Human-readable task name
	ScheduledTime time.Time  // Earliest time the task may run
	Handler       string     // Registered handler name
	Args          []byte     // JSON-encoded handler arguments (JSONB column)
	Status        TaskStatus // Lifecycle state
	Output        string     // Handler output or error message
	CreatedAt     time.Time  // Row creation time
}

// HandlerFunc executes one task. The returned string is stored in the
// task's output column on success; a non-nil error marks the task failed.
type HandlerFunc func(ctx context.Context, args map[string]any) (string, error)

var (
	// ErrHandlerNotRegistered is returned when a task names a handler
	// that no process has registered.
	ErrHandlerNotRegistered = errors.New("handler is not registered")

	// ErrDuplicateHandler is returned when registering a handler name twice.
	ErrDuplicateHandler = errors.New("handler is already registered")
)

// Registry maps handler names to their functions. Handlers are registered
// once at startup; lookups happen on every processed task.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register adds a handler under the given name.
func (r *Registry) Register(name string, fn HandlerFunc) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("handler %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	r.handlers[name] = fn
	return nil
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the registered handler names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry is the registry used by the pst binary. Programs that
// embed this library can register handlers here and reuse the CLI as-is.
var DefaultRegistry = NewRegistry()

// Register adds a handler to the default registry.
func Register(name string, fn HandlerFunc) error {
	return DefaultRegistry.Register(name, fn)
}
