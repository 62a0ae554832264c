// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"fmt"
	"time"
)

// QueueStatus summarizes the current state of the tasks table.
type QueueStatus struct {
	Pending    int
	InProgress int
	Succeeded  int
	Failed     int

	// NextDue is the earliest scheduled time among pending tasks,
	// nil when nothing is pending.
	NextDue *time.Time
}

// Total returns the number of task rows across all states.
func (s QueueStatus) Total() int {
	return s.Pending + s.InProgress + s.Succeeded + s.Failed
}

// IsEmpty returns true if no tasks have been queued yet.
func (s QueueStatus) IsEmpty() bool {
	return s.Total() == 0
}

// HasPending returns true if any tasks are waiting to run.
func (s QueueStatus) HasPending() bool {
	return s.Pending > 0
}

// HasInProgress returns true if any tasks are currently executing.
func (s QueueStatus) HasInProgress() bool {
	return s.InProgress > 0
}

// IsDrained returns true when no tasks are in progress. This is the
// condition the prestop drain waits for.
func (s QueueStatus) IsDrained() bool {
	return s.InProgress == 0
}

// Summary renders a single-line human-readable status report.
func (s QueueStatus) Summary() string {
	line := fmt.Sprintf("pending=%d in_progress=%d success=%d failure=%d",
		s.Pending, s.InProgress, s.Succeeded, s.Failed)
	if s.NextDue != nil {
		line += fmt.Sprintf(" next_due=%s", s.NextDue.Format(time.RFC3339))
	}
	return line
}
