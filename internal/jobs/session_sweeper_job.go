package jobs

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IdleSweeper closes sessions without activity for longer than idle.
type IdleSweeper interface {
	SweepIdle(now time.Time, idle time.Duration) []kernel.UUID
}

// SessionSweeperJob closes edit sessions abandoned by their users. Pending autosave
// timers of a swept session are cancelled, not flushed.
type SessionSweeperJob struct {
	sweeper  IdleSweeper
	idle     time.Duration
	schedule string
	clock    func() time.Time
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewSessionSweeperJob(
	sweeper IdleSweeper,
	idle time.Duration,
	schedule string,
	clock func() time.Time,
	logger *zap.Logger,
) *SessionSweeperJob {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionSweeperJob{
		sweeper:  sweeper,
		idle:     idle,
		schedule: schedule,
		clock:    clock,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With(zap.String("component", "session_sweeper_job")),
	}
}

func (j *SessionSweeperJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.RunOnce); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("session sweeper started",
		zap.String("schedule", j.schedule),
		zap.Duration("idle", j.idle))
	return nil
}

// RunOnce performs a single sweep.
func (j *SessionSweeperJob) RunOnce() {
	closed := j.sweeper.SweepIdle(j.clock(), j.idle)
	for _, id := range closed {
		j.logger.Info("idle session closed", zap.String("session_id", id.String()))
	}
}

func (j *SessionSweeperJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("session sweeper stopped")
}

