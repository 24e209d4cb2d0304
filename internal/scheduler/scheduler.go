package scheduler

import (
	"context"
	"fmt"
	"sync"

	"CreditCycle/internal/checkpoint"
	"CreditCycle/internal/report"
	"CreditCycle/internal/simulation"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler paces a run, stepping the economy once per cron tick.
type Scheduler struct {
	Cron       *cron.Cron
	Economy    *simulation.Economy
	Checkpoint string // empty disables checkpoints
	Ctx        context.Context

	mu        sync.Mutex
	remaining int
	done      chan struct{}
	err       error
	log       zerolog.Logger
}

// NewScheduler creates a Scheduler that runs periods steps.
func NewScheduler(ctx context.Context, econ *simulation.Economy, periods int, checkpointPath string, log zerolog.Logger) *Scheduler {
	s := &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Economy:    econ,
		Checkpoint: checkpointPath,
		Ctx:        ctx,
		remaining:  periods,
		done:       make(chan struct{}),
		log:        log.With().Str("component", "scheduler").Logger(),
	}
	if periods <= 0 {
		close(s.done)
	}
	return s
}

// Register schedules one period per tick of stepCron.
func (s *Scheduler) Register(stepCron string) error {
	if _, err := s.Cron.AddFunc(stepCron, s.stepTask); err != nil {
		return fmt.Errorf("register step task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("periods", s.remaining).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running step to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// Done is closed once all periods have run or a step has failed.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the run early, if any.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// RunStepNow executes one step immediately.
func (s *Scheduler) RunStepNow() {
	s.stepTask()
}

func (s *Scheduler) stepTask() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remaining <= 0 {
		return
	}
	summary, err := s.Economy.Step(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("step failed")
		s.err = err
		s.remaining = 0
		close(s.done)
		return
	}
	s.log.Info().Msg("\n" + report.FormatPeriod(summary))

	if s.Checkpoint != "" {
		if err := checkpoint.Save(s.Checkpoint, s.Economy.Snapshot()); err != nil {
			s.log.Error().Err(err).Str("path", s.Checkpoint).Msg("save checkpoint")
		}
	}

	s.remaining--
	if s.remaining == 0 {
		close(s.done)
	}
}
