package jobs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Schedules holds the cron expressions of the background jobs.
type Schedules struct {
	DeadlineMonitor string
	SessionSweeper  string
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	deadlineMonitor *DeadlineMonitorJob
	sessionSweeper  *SessionSweeperJob
}

func NewJobManager(
	warner OverdueWarner,
	sweeper IdleSweeper,
	idle time.Duration,
	schedules Schedules,
	clock func() time.Time,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		deadlineMonitor: NewDeadlineMonitorJob(warner, schedules.DeadlineMonitor, clock, logger),
		sessionSweeper:  NewSessionSweeperJob(sweeper, idle, schedules.SessionSweeper, clock, logger),
	}
}

// StartAll starts all scheduled jobs. Jobs already started are stopped when a later
// one fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.deadlineMonitor.Start(); err != nil {
		return fmt.Errorf("failed to start deadline monitor job: %w", err)
	}

	if err := jm.sessionSweeper.Start(); err != nil {
		jm.deadlineMonitor.Stop()
		return fmt.Errorf("failed to start session sweeper job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones.
func (jm *JobManager) StopAll() {
	jm.sessionSweeper.Stop()
	jm.deadlineMonitor.Stop()
}
