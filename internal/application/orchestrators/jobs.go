package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a recurring background task.
type Job struct {
	Name    string
	Spec    string // cron spec, e.g. "@every 1m"
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// StartScheduler registers jobs on a cron scheduler and starts it.
// A run still in progress when the next one is due is skipped.
// PRE: every Spec parses
// POST: call Stop on the result to wait for running jobs on shutdown
func StartScheduler(jobs []Job) (*cron.Cron, error) {
	logger := cron.PrintfLogger(slogPrintf{})
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	for _, job := range jobs {
		if job.Timeout <= 0 {
			job.Timeout = 5 * time.Minute
		}
		if _, err := c.AddFunc(job.Spec, func() { runJob(job) }); err != nil {
			return nil, err
		}
		slog.Info("job_registered", "job", job.Name, "spec", job.Spec)
	}
	c.Start()
	return c, nil
}

func runJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
	defer cancel()
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		slog.Error("job_failed", "job", job.Name, "error", err)
		return
	}
	slog.Debug("job_finished", "job", job.Name, "duration_ms", time.Since(start).Milliseconds())
}

// slogPrintf routes cron's own messages to slog.
type slogPrintf struct{}

func (slogPrintf) Printf(format string, args ...interface{}) {
	slog.Info("cron", "message", fmt.Sprintf(format, args...))
}
