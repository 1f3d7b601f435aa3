package materialize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultCronSpec refreshes materialized occurrences nightly.
const DefaultCronSpec = "30 2 * * *"

// Scheduler runs the materializer on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler wires m to a cron spec (standard 5-field syntax). An empty
// spec means DefaultCronSpec.
func NewScheduler(m *Materializer, spec string, logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultCronSpec
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := m.RunOnce(context.Background()); err != nil {
			logger.Error("scheduled materialization failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	logger.Info("materialization schedule registered", "spec", spec)
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running the schedule in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("materialization schedule stopped")
}
