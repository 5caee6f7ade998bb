package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"icstrim/internal/config"
	appLog "icstrim/internal/log"
)

const version = "0.3.0"

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	app := &cli.App{
		Name:    "icstrim",
		Usage:   "Drop calendar events that ended long ago and optionally strip vendor extensions.",
		Version: version,
		Flags:   trimFlags(),
		Action:  trimAction,
		Commands: []*cli.Command{
			initConfigCommand(),
		},
	}

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		appLog.Error("icstrim failed", err)
		for _, h := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "hint:", h)
		}
	}
	appLog.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func trimFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "infile", Aliases: []string{"i"}, Usage: "Input calendar (.ics path or http(s) URL)"},
		&cli.StringFlag{Name: "outfile", Aliases: []string{"o"}, Usage: "Output calendar (.ics path, - for stdout)"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Extra output"},
		&cli.BoolFlag{Name: "strip-application-specific", Aliases: []string{"s"}, Usage: `Strip application-specific subcomponents ("X-..." components) from kept events`},
		&cli.IntFlag{Name: "months-before", Aliases: []string{"m"}, Value: 12, Usage: "How long to go back, in calendar months (0 = today)"},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"ICSTRIM_CONFIG"}, Usage: "Path to YAML config file"},
		&cli.BoolFlag{Name: "verify", Usage: "Re-parse output with an independent parser before writing"},
		&cli.StringFlag{Name: "schedule", Usage: `Cron expression; run repeatedly (e.g. "0 3 * * *") until interrupted`},
		&cli.BoolFlag{Name: "log-json", Usage: "Emit log records as JSON"},
	}
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:      "init-config",
		Usage:     "Write a config file with default values.",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("init-config needs a target path")
			}
			if _, err := os.Stat(path); err == nil {
				return errors.WithHint(errors.Newf("%s already exists", path), "remove it first to regenerate defaults")
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return errors.Wrap(err, "write default config")
			}
			appLog.Info("default config written", "path", path)
			return nil
		},
	}
}
