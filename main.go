package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/sift/internal/commands"
	"github.com/colonyops/sift/internal/core/config"
	"github.com/colonyops/sift/internal/core/styles"
	"github.com/colonyops/sift/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

const description = `Sift opens a diff in the terminal and lets you pick which changes to keep,
down to single lines.

Given two files, or two directories with --dir-diff, sift shows what changed
from LEFT to RIGHT. On confirm, RIGHT is rewritten to hold LEFT plus only the
changes you selected. This makes sift usable as a diff editor for version
control tools that hand it two directory snapshots.

Keys: j/k move, space toggles, f folds, c confirms, q cancels, ? shows all.`

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}
	diffCmd := commands.NewDiffCmd(flags, nil)

	app := &cli.Command{
		Name:        "sift",
		Usage:       "Interactively select changes from a diff",
		UsageText:   "sift [options] LEFT RIGHT\nsift command [command options]",
		Description: description,
		Version:     build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SIFT_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("SIFT_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SIFT_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			// config validate reports a broken file itself.
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Validation ensures the theme name is known.
			_ = styles.UseTheme(cfg.Theme)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: diffCmd.Run,
	}

	app.Flags = append(app.Flags, diffCmd.Flags()...)

	app = commands.NewPatchCmd(flags).Register(app)
	app = commands.NewLoadCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	switch {
	case errors.Is(runErr, commands.ErrCancelled):
		exitCode = 1
	case runErr != nil:
		fmt.Fprintln(os.Stderr, runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
