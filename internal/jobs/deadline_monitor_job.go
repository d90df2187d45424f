package jobs

import (
	"context"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OverdueWarner is the command the deadline monitor runs.
type OverdueWarner interface {
	Handle(ctx context.Context, cmd commands.WarnOverdueOrdersCommand) (int, error)
}

// DeadlineMonitorJob warns about open orders past their deadline.
type DeadlineMonitorJob struct {
	handler  OverdueWarner
	schedule string
	timeout  time.Duration
	clock    func() time.Time
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewDeadlineMonitorJob(
	handler OverdueWarner,
	schedule string,
	clock func() time.Time,
	logger *zap.Logger,
) *DeadlineMonitorJob {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineMonitorJob{
		handler:  handler,
		schedule: schedule,
		timeout:  time.Minute,
		clock:    clock,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With(zap.String("component", "deadline_monitor_job")),
	}
}

// Start schedules the job. The schedule uses the six-field cron format.
func (j *DeadlineMonitorJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("deadline monitor started", zap.String("schedule", j.schedule))
	return nil
}

// RunOnce performs a single check.
func (j *DeadlineMonitorJob) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd, err := commands.NewWarnOverdueOrdersCommand(j.clock())
	if err != nil {
		j.logger.Error("deadline monitor failed", zap.Error(err))
		return
	}
	count, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("deadline monitor failed", zap.Error(err))
		return
	}
	if count > 0 {
		j.logger.Info("overdue orders found", zap.Int("count", count))
	}
}

// Stop waits for a running check to finish.
func (j *DeadlineMonitorJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("deadline monitor stopped")
}
