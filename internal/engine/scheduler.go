package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic scan and detection cycles.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
}

// NewScheduler creates a new Scheduler that runs engine tasks on a schedule.
func NewScheduler(
	eng *Engine,
	scanInterval time.Duration,
	detectInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	if _, err := c.AddFunc("@every "+scanInterval.String(), s.runScan); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc("@every "+detectInterval.String(), s.runDetection); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runScan() {
	ctx := context.Background()
	s.log.Info("scheduled scan starting")
	if err := s.engine.RunScan(ctx); err != nil {
		s.log.Error("scheduled scan failed", "error", err)
	}
}

func (s *Scheduler) runDetection() {
	ctx := context.Background()
	s.log.Info("scheduled detection starting")
	if err := s.engine.RunDetection(ctx); err != nil {
		s.log.Error("scheduled detection failed", "error", err)
	}
}
