// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers   = 1
	defaultBatchSize = 100
)

// ProcessStats counts the outcome of one processing pass.
type ProcessStats struct {
	Processed int
	Succeeded int
	Failed    int
}

// Processor claims due tasks from the store and executes their handlers.
// With the default single worker, tasks run sequentially in scheduled
// order. Claims use the store's atomic claim, so multiple processors
// (or multiple workers) never execute the same task twice.
type Processor struct {
	store    Store
	registry *Registry
	workers  int
	batch    int
	log      zerolog.Logger

	mu    sync.Mutex
	stats ProcessStats
}

// ProcessorOptions tunes a Processor. Zero values fall back to defaults.
type ProcessorOptions struct {
	Workers   int            // Concurrent task executors (default 1)
	BatchSize int            // Tasks claimed per store round-trip (default 100)
	Logger    zerolog.Logger // Destination for per-task log lines
}

// NewProcessor creates a Processor over the given store and registry.
func NewProcessor(store Store, reg *Registry, opts ProcessorOptions) *Processor {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &Processor{
		store:    store,
		registry: reg,
		workers:  workers,
		batch:    batch,
		log:      opts.Logger,
	}
}

// ProcessDue runs all tasks whose scheduled time has passed and returns
// once no due tasks remain. Claiming stops when ctx is canceled, but
// tasks already claimed are finished and recorded before returning.
func (p *Processor) ProcessDue(ctx context.Context) (ProcessStats, error) {
	p.mu.Lock()
	p.stats = ProcessStats{}
	p.mu.Unlock()

	work := make(chan Task)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range work {
				p.runTask(ctx, task)
			}
		}()
	}

	var claimErr error
	for ctx.Err() == nil {
		claimed, err := p.store.ClaimDueTasks(ctx, p.batch)
		if err != nil {
			claimErr = fmt.Errorf("failed to claim due tasks: %w", err)
			break
		}
		if len(claimed) == 0 {
			break
		}
		for _, task := range claimed {
			work <- task
		}
	}

	close(work)
	wg.Wait()

	p.mu.Lock()
	stats := p.stats
	p.mu.Unlock()
	return stats, claimErr
}

// Watch repeatedly processes due tasks on a fixed interval until ctx is
// canceled. In-flight tasks from the current pass finish before return.
func (p *Processor) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats, err := p.ProcessDue(ctx)
		if err != nil {
			return err
		}
		if stats.Processed > 0 {
			p.log.Info().
				Int("processed", stats.Processed).
				Int("succeeded", stats.Succeeded).
				Int("failed", stats.Failed).
				Msg("Processed due tasks")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// recordTimeout bounds outcome writes once the run context is gone.
const recordTimeout = 10 * time.Second

// runTask executes one claimed task and records its outcome. Handler
// errors and panics become failure rows; they never take down the
// processor.
func (p *Processor) runTask(ctx context.Context, task Task) {
	output, err := p.execute(ctx, task)

	// Outcome recording must survive a shutdown cancel: a claimed row
	// left in_progress would block the prestop drain forever.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err != nil {
		p.log.Warn().Str("task", task.Name).Int64("id", task.ID).Err(err).Msg("Task failed")
		p.record(task, false)
		if storeErr := p.store.FailTask(recordCtx, task.ID, err.Error()); storeErr != nil {
			p.log.Error().Int64("id", task.ID).Err(storeErr).Msg("Failed to record task failure")
		}
		return
	}

	p.log.Debug().Str("task", task.Name).Int64("id", task.ID).Msg("Task succeeded")
	p.record(task, true)
	if storeErr := p.store.CompleteTask(recordCtx, task.ID, output); storeErr != nil {
		p.log.Error().Int64("id", task.ID).Err(storeErr).Msg("Failed to record task success")
	}
}

// execute resolves the handler and invokes it with decoded args.
func (p *Processor) execute(ctx context.Context, task Task) (output string, err error) {
	fn, ok := p.registry.Lookup(task.Handler)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrHandlerNotRegistered, task.Handler)
	}

	args := map[string]any{}
	if len(task.Args) > 0 {
		if jsonErr := json.Unmarshal(task.Args, &args); jsonErr != nil {
			return "", fmt.Errorf("failed to decode task args: %w", jsonErr)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return fn(ctx, args)
}

func (p *Processor) record(task Task, succeeded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Processed++
	if succeeded {
		p.stats.Succeeded++
	} else {
		p.stats.Failed++
	}
}
