// Package jobs provides scheduled background tasks for the fulfillment service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with seconds).
//
// # Available Jobs
//
//  1. DeadlineMonitorJob - raises a warning notification for every open order past its deadline
//  2. SessionSweeperJob - closes edit sessions that saw no activity within the idle timeout
//
// # Usage
//
//	jobManager := jobs.NewJobManager(warnHandler, sessionManager, 30*time.Minute, jobs.Schedules{
//		DeadlineMonitor: "0 */15 * * * *",
//		SessionSweeper:  "0 * * * * *",
//	}, time.Now, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		logger.Fatal("failed to start jobs", zap.Error(err))
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and the next scheduled run proceeds normally. A job that
// fails to start stops the jobs started before it.
package jobs
