// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package db

// TasksTable defines the tasks table: one row per queued task, with
// status tracking the pending -> in_progress -> success/failure
// lifecycle.
type TasksTable struct{}

// Name returns the table name.
func (TasksTable) Name() string { return "tasks" }

// Schema returns the CREATE TABLE statement.
func (TasksTable) Schema() string {
	return `
CREATE TABLE IF NOT EXISTS tasks (
    id             SERIAL PRIMARY KEY,
    name           TEXT NOT NULL,
    scheduled_time TIMESTAMP WITH TIME ZONE NOT NULL,
    handler        TEXT NOT NULL,
    args           JSONB,
    status         TEXT DEFAULT 'pending',
    output         TEXT,
    created_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_status_scheduled
    ON tasks (status, scheduled_time);
`
}
