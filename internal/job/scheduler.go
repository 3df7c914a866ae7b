// Package job holds the background jobs that keep the monitor's view of
// the relay fresh, driven by a cron scheduler.
package job

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron instance running the background jobs.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add schedules j under spec (cron expression or @every descriptor) and
// runs it once immediately, so dependent state is primed before the first
// tick.
func (s *Scheduler) Add(spec string, j cron.Job) error {
	if _, err := s.cron.AddJob(spec, j); err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", spec, err)
	}
	j.Run()
	return nil
}

// Start begins ticking the scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler; a job mid-run finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
