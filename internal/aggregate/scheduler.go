package aggregate

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Scheduler triggers periodic aggregation cycles.
type Scheduler struct {
	cron *cron.Cron
	orch *Orchestrator
}

// NewScheduler creates a Scheduler running the orchestrator on the given
// cron spec (e.g. "@every 5m").
func NewScheduler(orch *Orchestrator, spec string) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		orch: orch,
	}
	_, err := s.cron.AddFunc(spec, func() {
		s.orch.RunCycle(context.Background())
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scheduler: add cron func %q", spec)
	}
	return s, nil
}

// Start begins periodic scheduling.
func (s *Scheduler) Start() {
	s.cron.Start()
	zap.L().Info("aggregation scheduler started")
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.L().Info("aggregation scheduler stopped")
}
