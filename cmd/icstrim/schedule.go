package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	appLog "icstrim/internal/log"
)

// runScheduled runs j on the cron expression until ctx is cancelled. A tick that
// arrives while the previous run is still going is skipped.
func runScheduled(ctx context.Context, expr string, j *job) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	id, err := c.AddFunc(expr, func() {
		if _, err := j.run(ctx); err != nil {
			appLog.Error("scheduled trim failed", err, "infile", j.infile)
		}
	})
	if err != nil {
		return errors.WithHint(errors.Wrapf(err, "invalid schedule %q", expr), `use five cron fields, e.g. "0 3 * * *"`)
	}

	c.Start()
	appLog.Info("scheduled trimming started", "schedule", expr, "entry", int(id))

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("scheduled trimming stopped")
	return nil
}
