package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
)

// Runner executes one contribution run for the given processing date.
type Runner interface {
	Run(ctx context.Context, asOf time.Time) (*domain.RunSummary, error)
}

// Scheduler drives the daily contribution run on a cron schedule. It is an
// in-process fallback for deployments without an external cron caller; both
// paths funnel into the same Runner, so a double trigger only produces
// skipped outcomes.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	schedule string
	location *time.Location
}

type printfLogger struct{}

func (printfLogger) Printf(format string, args ...interface{}) {
	zap.L().Sugar().Infof(format, args...)
}

func New(runner Runner, schedule string, location *time.Location) *Scheduler {
	c := cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.Recover(cron.PrintfLogger(printfLogger{}))),
	)
	return &Scheduler{
		cron:     c,
		runner:   runner,
		schedule: schedule,
		location: location,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	zap.L().Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.String("timezone", s.location.String()),
	)
	return nil
}

func (s *Scheduler) runOnce() {
	asOf := time.Now().In(s.location)
	summary, err := s.runner.Run(context.Background(), asOf)
	if err != nil {
		zap.L().Error("Scheduled contribution run failed", zap.Error(err))
		return
	}
	zap.L().Info("Scheduled contribution run finished",
		zap.String("runID", summary.ID.String()),
		zap.Int("processed", summary.TotalProcessed),
		zap.Int("success", summary.SuccessCount),
		zap.Int("failed", summary.FailureCount),
		zap.Int("skipped", summary.SkippedCount),
	)
}

// Stop halts scheduling and waits for a running job to finish or the
// context to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
