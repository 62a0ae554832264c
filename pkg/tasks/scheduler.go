// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job describes a recurring task: on every cron trigger a fresh pending
// task row is queued with the job's handler and args.
type Job struct {
	ID       string         // Assigned on Add
	Name     string         // Name given to queued task rows
	Schedule string         // Cron expression (standard 5-field, @every also accepted)
	Handler  string         // Registered handler name
	Args     map[string]any // Handler arguments
}

// Scheduler turns cron schedules into queued task rows. It does not
// execute anything itself; a Processor (in-process or a separate
// `pst process` invocation) picks the rows up.
type Scheduler struct {
	store Store
	reg   *Registry
	cron  *cron.Cron
	log   zerolog.Logger

	mu   sync.Mutex
	jobs []Job
}

// NewScheduler creates a Scheduler enqueueing into store.
func NewScheduler(store Store, reg *Registry, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		store: store,
		reg:   reg,
		cron:  cron.New(),
		log:   log,
	}
}

// Add registers a recurring job. The handler must already be registered
// and the schedule must be a valid cron expression.
func (s *Scheduler) Add(name, schedule, handler string, args map[string]any) (Job, error) {
	if name == "" {
		return Job{}, fmt.Errorf("job name cannot be empty")
	}
	if _, ok := s.reg.Lookup(handler); !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrHandlerNotRegistered, handler)
	}

	job := Job{
		ID:       uuid.NewString(),
		Name:     name,
		Schedule: schedule,
		Handler:  handler,
		Args:     args,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.enqueue(job) }); err != nil {
		return Job{}, fmt.Errorf("invalid schedule %q for job %q: %w", schedule, name, err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	s.log.Info().Str("job", name).Str("schedule", schedule).Msg("Registered recurring job")
	return job, nil
}

// Jobs returns the registered jobs in registration order.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Run starts the cron runner and blocks until ctx is canceled, then
// waits for any in-flight enqueues to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.Jobs())).Msg("Scheduler started")

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// enqueue queues one task row for a triggered job.
func (s *Scheduler) enqueue(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := Queue(ctx, s.store, s.reg, job.Name, time.Now(), job.Handler, job.Args)
	if err != nil {
		s.log.Error().Str("job", job.Name).Err(err).Msg("Failed to queue recurring task")
		return
	}
	s.log.Debug().Str("job", job.Name).Int64("task_id", id).Msg("Queued recurring task")
}
