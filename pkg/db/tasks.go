// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/loganhenson/go-simple-tasks/pkg/tasks"
)

// InsertTask adds a pending task row and returns its id.
func (db *DB) InsertTask(ctx context.Context, t tasks.Task) (int64, error) {
	// lib/pq encodes []byte as bytea; jsonb wants text.
	var args any
	if len(t.Args) > 0 {
		args = string(t.Args)
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO tasks (name, scheduled_time, handler, args, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id`,
		t.Name, t.ScheduledTime, t.Handler, args,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task %q: %w", t.Name, err)
	}
	return id, nil
}

// ClaimDueTasks atomically marks up to limit due pending tasks as
// in_progress and returns them in scheduled order. FOR UPDATE SKIP
// LOCKED keeps concurrent claimers from ever taking the same row.
// UPDATE ... RETURNING does not preserve the subquery's ORDER BY, so
// the claimed rows are sorted here.
func (db *DB) ClaimDueTasks(ctx context.Context, limit int) ([]tasks.Task, error) {
	rows, err := db.conn.QueryContext(ctx, `
		UPDATE tasks
		SET status = 'in_progress'
		WHERE id IN (
			SELECT id FROM tasks
			WHERE status = 'pending' AND scheduled_time <= NOW()
			ORDER BY scheduled_time ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, scheduled_time, handler, COALESCE(args, '{}'::jsonb), status, COALESCE(output, ''), created_at`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due tasks: %w", err)
	}
	defer rows.Close()

	var claimed []tasks.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed tasks: %w", err)
	}

	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].ScheduledTime.Before(claimed[j].ScheduledTime)
	})
	return claimed, nil
}

// CompleteTask marks a claimed task successful and stores its output.
func (db *DB) CompleteTask(ctx context.Context, id int64, output string) error {
	return db.finishTask(ctx, id, tasks.StatusSuccess, output)
}

// FailTask marks a claimed task failed and stores the error message.
func (db *DB) FailTask(ctx context.Context, id int64, errMsg string) error {
	return db.finishTask(ctx, id, tasks.StatusFailure, errMsg)
}

func (db *DB) finishTask(ctx context.Context, id int64, status tasks.TaskStatus, output string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE tasks SET status = $2, output = $3 WHERE id = $1`,
		id, string(status), output,
	)
	if err != nil {
		return fmt.Errorf("failed to mark task %d %s: %w", id, status, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}

// CountInProgress reports how many tasks are currently in_progress.
// This is the query the prestop drain polls.
func (db *DB) CountInProgress(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = 'in_progress'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count in-progress tasks: %w", err)
	}
	return count, nil
}

// Status summarizes the tasks table by lifecycle state.
func (db *DB) Status(ctx context.Context) (tasks.QueueStatus, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks GROUP BY status`,
	)
	if err != nil {
		return tasks.QueueStatus{}, fmt.Errorf("failed to count tasks by status: %w", err)
	}
	defer rows.Close()

	var status tasks.QueueStatus
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return tasks.QueueStatus{}, fmt.Errorf("failed to scan status count: %w", err)
		}
		switch tasks.TaskStatus(state) {
		case tasks.StatusPending:
			status.Pending = count
		case tasks.StatusInProgress:
			status.InProgress = count
		case tasks.StatusSuccess:
			status.Succeeded = count
		case tasks.StatusFailure:
			status.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return tasks.QueueStatus{}, fmt.Errorf("failed to read status counts: %w", err)
	}

	var nextDue sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		`SELECT MIN(scheduled_time) FROM tasks WHERE status = 'pending'`,
	).Scan(&nextDue)
	if err != nil {
		return tasks.QueueStatus{}, fmt.Errorf("failed to find next due time: %w", err)
	}
	if nextDue.Valid {
		t := nextDue.Time
		status.NextDue = &t
	}

	return status, nil
}

// TaskByName returns the most recently created task with the given name.
func (db *DB) TaskByName(ctx context.Context, name string) (tasks.Task, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, scheduled_time, handler, COALESCE(args, '{}'::jsonb), status, COALESCE(output, ''), created_at
		FROM tasks
		WHERE name = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		name,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return tasks.Task{}, fmt.Errorf("task %q not found", name)
	}
	return t, err
}

// DropTasksTable removes the tasks table. Used by test teardown.
func (db *DB) DropTasksTable(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DROP TABLE IF EXISTS tasks`); err != nil {
		return fmt.Errorf("failed to drop tasks table: %w", err)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (tasks.Task, error) {
	var t tasks.Task
	var status string
	err := s.Scan(&t.ID, &t.Name, &t.ScheduledTime, &t.Handler, &t.Args, &status, &t.Output, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return tasks.Task{}, err
	}
	if err != nil {
		return tasks.Task{}, fmt.Errorf("failed to scan task row: %w", err)
	}
	t.Status = tasks.TaskStatus(status)
	return t, nil
}
