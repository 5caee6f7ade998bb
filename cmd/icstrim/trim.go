package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"icstrim/internal/config"
	appLog "icstrim/internal/log"
	"icstrim/internal/sink"
	"icstrim/internal/source"
	"icstrim/internal/trim"
)

// job is the effective configuration for one trim, after flags override
// the config file.
type job struct {
	infile  string
	outfile string
	cfg     *config.Config
	loc     *time.Location
	fetcher *source.Fetcher
	now     func() time.Time
}

func trimAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	if cfg.Verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}
	if cfg.LogJSON {
		if err := appLog.Init(true); err != nil {
			return errors.Wrap(err, "init json logger")
		}
	}

	j := &job{
		infile:  c.String("infile"),
		outfile: c.String("outfile"),
		cfg:     cfg,
		fetcher: source.NewFetcher(cfg.CacheDir),
		now:     time.Now,
	}
	if j.infile == "" || j.outfile == "" {
		_ = cli.ShowAppHelp(c)
		return errors.New("both --infile and --outfile are required")
	}
	if j.loc, err = cfg.Location(); err != nil {
		return err
	}

	appLog.Debug("effective config",
		"infile", j.infile,
		"outfile", j.outfile,
		"months_before", cfg.MonthsBefore,
		"strip_extensions", cfg.StripExtensions,
		"extension_prefix", cfg.ExtensionPrefix,
		"floating_timezone", j.loc.String(),
		"max_occurrences", cfg.MaxOccurrences,
		"verify", cfg.VerifyOutput,
		"schedule", cfg.Schedule,
	)

	if cfg.Schedule != "" {
		return runScheduled(c.Context, cfg.Schedule, j)
	}
	_, err = j.run(c.Context)
	return err
}

// applyFlags lets explicitly set flags override config file values.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("months-before") {
		cfg.MonthsBefore = c.Int("months-before")
	}
	if c.IsSet("strip-application-specific") {
		cfg.StripExtensions = c.Bool("strip-application-specific")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}
	if c.IsSet("verify") {
		cfg.VerifyOutput = c.Bool("verify")
	}
	if c.IsSet("schedule") {
		cfg.Schedule = c.String("schedule")
	}
	if c.IsSet("log-json") {
		cfg.LogJSON = c.Bool("log-json")
	}
	cfg.Normalize()
}

// run performs one complete load, trim and write cycle.
func (j *job) run(ctx context.Context) (trim.Summary, error) {
	in, err := j.fetcher.Load(ctx, j.infile)
	if err != nil {
		return trim.Summary{}, err
	}
	if in.FromCache {
		appLog.Info("using cached copy of input", "infile", j.infile)
	}

	cutoff := trim.MonthsBefore(j.now().In(j.loc), j.cfg.MonthsBefore)
	appLog.Info("finding all events that end on or after cutoff", "cutoff", cutoff.Format("2006-01-02"))

	opts := trim.Options{
		Cutoff:          cutoff,
		StripExtensions: j.cfg.StripExtensions,
		ExtensionPrefix: j.cfg.ExtensionPrefix,
		Floating:        j.loc,
		MaxOccurrences:  j.cfg.MaxOccurrences,
		Verify:          j.cfg.VerifyOutput,
	}

	var sum trim.Summary
	write := func(w io.Writer) error {
		var rerr error
		sum, rerr = trim.Run(ctx, bytes.NewReader(in.Body), w, opts)
		return rerr
	}
	if j.outfile == "-" {
		err = write(os.Stdout)
	} else {
		err = sink.WriteAtomic(j.outfile, 0o644, write)
	}
	if err != nil {
		return sum, err
	}

	report(j, sum)
	return sum, nil
}

func report(j *job, sum trim.Summary) {
	appLog.Info("read events", "count", sum.ReadCount, "from", j.infile)
	if j.cfg.Verbose {
		for _, ev := range sum.Retained {
			appLog.Info("adding event", "summary", ev.Summary, "end", ev.End.String(), "uid", ev.ID)
		}
	}
	for _, s := range sum.Skipped {
		appLog.Warn("skipped event with unresolvable end", "uid", s.ID, "reason", s.Reason)
	}
	if sum.StrippedCount > 0 {
		appLog.Info("stripped application-specific subcomponents", "count", sum.StrippedCount)
	}
	appLog.Info("wrote events", "count", sum.WrittenCount, "to", j.outfile,
		"removed", sum.RemovedCount, "skipped", len(sum.SkippedUnresolvable))
}
