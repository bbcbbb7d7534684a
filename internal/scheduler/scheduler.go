// Package scheduler runs periodic jobs against the stateless analysis core:
// weather cache refresh and insight report archiving.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnknownJob is returned by RunOnce for a name no job carries.
var ErrUnknownJob = errors.New("unknown job")

// Job is one periodic task.
type Job struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// Scheduler ticks every registered job on its own interval until stopped.
type Scheduler struct {
	jobs     []Job
	logger   *zerolog.Logger
	metrics  *MetricsRecorder
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a scheduler. Jobs with a non-positive interval are skipped by Start.
func New(logger *zerolog.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scheduler{
		jobs:     jobs,
		logger:   logger,
		metrics:  NewMetricsRecorder(),
		stopChan: make(chan struct{}),
	}
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.Name
	}
	return names
}

// Start launches one goroutine per job and returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.logger.Warn().Str("job", job.Name).Msg("Job has no interval, not scheduling")
			continue
		}
		s.wg.Add(1)
		go func(job Job) {
			defer s.wg.Done()
			s.loop(ctx, job)
		}(job)
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	s.logger.Info().Str("job", job.Name).Dur("interval", job.Interval).Msg("Starting scheduled job")

	if job.RunOnStart {
		s.run(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("job", job.Name).Msg("Scheduled job stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Str("job", job.Name).Msg("Scheduled job stopping (stop signal)")
			return
		case <-ticker.C:
			s.run(ctx, job)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Run(ctx)
	s.metrics.RecordRun(job.Name, time.Since(start), err)
	if err != nil {
		s.logger.Error().Err(err).Str("job", job.Name).Msg("Scheduled job failed")
		return err
	}
	s.logger.Debug().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("Scheduled job finished")
	return nil
}

// RunOnce runs the named job immediately on the caller's goroutine.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.run(ctx, job)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownJob, name)
}

// Stop signals every job loop to exit and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}
