package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron schedule. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	spec    string
	job     Job
	cron    *cron.Cron
	running atomic.Bool
	wg      sync.WaitGroup

	mu       sync.Mutex
	stopping bool
	lastRun  time.Time
	lastErr  error
}

// NewScheduler creates a new scheduler instance; spec uses the standard
// five-field cron format, evaluated in loc
func NewScheduler(spec string, loc *time.Location, job Job) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		spec: spec,
		job:  job,
		cron: cron.New(cron.WithLocation(loc)),
	}
}

// Start registers the job and starts the cron loop. Runs receive ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.spec, func() {
		log.Info().Msg("Running scheduled pipeline...")
		if _, err := s.RunNow(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule pipeline %q: %w", s.spec, err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	next := time.Time{}
	if len(entries) > 0 {
		next = entries[0].Next
	}
	log.Info().
		Str("schedule", s.spec).
		Time("next_run", next).
		Msg("Pipeline scheduled")

	return nil
}

// RunNow runs the job immediately unless a run is already in progress or
// Stop has been called. started is false when the call was skipped.
func (s *Scheduler) RunNow(ctx context.Context) (started bool, err error) {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		log.Warn().Msg("Scheduler is stopping, skipping run")
		return false, nil
	}
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		log.Warn().Msg("Previous run still in progress, skipping")
		return false, nil
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer func() {
		s.running.Store(false)
		s.wg.Done()
	}()

	err = s.job(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	return true, err
}

// LastRun returns when the most recent run finished and its error
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// Stop stops the cron loop and waits for an in-flight run to return.
// No run starts after Stop is called.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()

	log.Info().Msg("Scheduler stopped")
}
