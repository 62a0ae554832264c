// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDrainInterval is the fixed delay between drain polls.
const DefaultDrainInterval = 5 * time.Second

// InProgressCounter reports how many tasks are currently marked
// in_progress. Satisfied by pkg/db.DB.
type InProgressCounter interface {
	CountInProgress(ctx context.Context) (int, error)
}

// Drainer blocks shutdown until no tasks are in progress. It is meant to
// run as an orchestrator prestop hook: poll the in-progress count on a
// fixed delay and return success exactly when it reaches zero.
type Drainer struct {
	counter  InProgressCounter
	interval time.Duration
	log      zerolog.Logger
}

// NewDrainer creates a Drainer polling counter every interval. A
// non-positive interval falls back to DefaultDrainInterval.
func NewDrainer(counter InProgressCounter, interval time.Duration, log zerolog.Logger) *Drainer {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &Drainer{counter: counter, interval: interval, log: log}
}

// Wait polls until the in-progress count reaches zero, logging one
// waiting line per iteration with the remaining count. A zero count on
// the first poll returns immediately without logging. There is no
// retry ceiling: with a background context Wait blocks for as long as
// tasks remain in progress. Any query error aborts immediately with
// that error.
func (d *Drainer) Wait(ctx context.Context) error {
	for {
		remaining, err := d.counter.CountInProgress(ctx)
		if err != nil {
			return fmt.Errorf("failed to count in-progress tasks: %w", err)
		}
		if remaining == 0 {
			return nil
		}

		d.log.Info().Int("remaining", remaining).
			Msgf("Waiting for %d in-progress tasks to finish...", remaining)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.interval):
		}
	}
}
