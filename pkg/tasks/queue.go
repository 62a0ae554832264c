// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Queue inserts a pending task row scheduled to run at scheduledTime.
// The handler must already be registered in reg; queueing a task no
// process knows how to run is rejected up front.
func Queue(ctx context.Context, store Store, reg *Registry, name string, scheduledTime time.Time, handler string, args map[string]any) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("task name cannot be empty")
	}
	if reg == nil {
		return 0, fmt.Errorf("registry cannot be nil")
	}
	if _, ok := reg.Lookup(handler); !ok {
		return 0, fmt.Errorf("%w: %s", ErrHandlerNotRegistered, handler)
	}

	var argsJSON []byte
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return 0, fmt.Errorf("failed to encode task args: %w", err)
		}
		argsJSON = data
	}

	id, err := store.InsertTask(ctx, Task{
		Name:          name,
		ScheduledTime: scheduledTime,
		Handler:       handler,
		Args:          argsJSON,
		Status:        StatusPending,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to queue task %q: %w", name, err)
	}
	return id, nil
}
