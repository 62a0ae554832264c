// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import "context"

// Store is the persistence surface the task library needs. The canonical
// implementation is pkg/db backed by PostgreSQL; tests substitute an
// in-memory fake.
type Store interface {
	// InsertTask adds a pending task row and returns its id.
	InsertTask(ctx context.Context, t Task) (int64, error)

	// ClaimDueTasks atomically marks up to limit due pending tasks as
	// in_progress and returns them. A task is due when its scheduled
	// time is not in the future. Concurrent claimers never receive the
	// same task twice.
	ClaimDueTasks(ctx context.Context, limit int) ([]Task, error)

	// CompleteTask marks a claimed task successful and stores its output.
	CompleteTask(ctx context.Context, id int64, output string) error

	// FailTask marks a claimed task failed and stores the error message.
	FailTask(ctx context.Context, id int64, errMsg string) error

	// CountInProgress reports how many tasks are currently in_progress.
	CountInProgress(ctx context.Context) (int, error)

	// Status summarizes the queue by lifecycle state.
	Status(ctx context.Context) (QueueStatus, error)
}
