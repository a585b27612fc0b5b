package cron

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// StartCron schedules every registered job and starts the scheduler.
// A job still running when its next tick fires is skipped.
func StartCron(log *slog.Logger) (*cron.Cron, error) {
	if log == nil {
		log = slog.Default()
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	for name, j := range Jobs() {
		run := j.Run
		jobName := name
		_, err := c.AddFunc(j.Schedule, func() {
			log.Info("cron job started", "job", jobName)
			run()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", name, err)
		}
		log.Info("cron job scheduled", "job", name, "schedule", j.Schedule)
	}
	c.Start()
	return c, nil
}
