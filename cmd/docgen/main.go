// Command docgen generates CLI reference documentation from the sift command
// definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/sift/internal/commands"
)

func main() {
	flags := &commands.Flags{}
	diffCmd := commands.NewDiffCmd(flags, nil)

	root := &cli.Command{
		Name:      "sift",
		Usage:     "Interactively select changes from a diff",
		UsageText: "sift [options] LEFT RIGHT\nsift command [command options]",
		Description: `Sift opens a diff in the terminal and lets you pick which changes to keep,
down to single lines.

Given two files, or two directories with --dir-diff, sift shows what changed
from LEFT to RIGHT. On confirm, RIGHT is rewritten to hold LEFT plus only the
changes you selected.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("SIFT_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file",
				Sources: cli.EnvVars("SIFT_LOG_FILE"),
				Value:   commands.DefaultLogFile(),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("SIFT_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
		},
	}
	root.Flags = append(root.Flags, diffCmd.Flags()...)

	root = commands.NewPatchCmd(flags).Register(root)
	root = commands.NewLoadCmd(flags).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
