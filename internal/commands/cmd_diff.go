package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/diffedit"
)

// DiffCmd compares two files or directories, lets the user pick changes,
// and writes the result into the right-hand side.
type DiffCmd struct {
	flags *Flags
	fsys  diffedit.Filesystem

	dirDiff  bool
	readOnly bool
	dryRun   bool
	include  []string
	exclude  []string
	message  string
}

// NewDiffCmd creates the diff command. A nil fsys uses the real filesystem.
func NewDiffCmd(flags *Flags, fsys diffedit.Filesystem) *DiffCmd {
	if fsys == nil {
		fsys = diffedit.RealFS{}
	}
	return &DiffCmd{flags: flags, fsys: fsys}
}

// Flags returns the diff flags. The diff is the root action, so these are
// registered on the root command.
func (cmd *DiffCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "dir-diff",
			Aliases:     []string{"d"},
			Usage:       "compare two directories instead of two files",
			Destination: &cmd.dirDiff,
		},
		&cli.BoolFlag{
			Name:        "read-only",
			Usage:       "show the diff without allowing changes",
			Destination: &cmd.readOnly,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Aliases:     []string{"n"},
			Usage:       "print what would be written instead of writing",
			Destination: &cmd.dryRun,
		},
		&cli.StringSliceFlag{
			Name:        "include",
			Usage:       "only compare paths matching this glob (repeatable)",
			Destination: &cmd.include,
		},
		&cli.StringSliceFlag{
			Name:        "exclude",
			Usage:       "skip paths matching this glob (repeatable)",
			Destination: &cmd.exclude,
		},
		&cli.StringFlag{
			Name:        "message",
			Aliases:     []string{"m"},
			Usage:       "commit message to show and edit; printed on confirm",
			Destination: &cmd.message,
		},
	}
}

// Run is the root action.
func (cmd *DiffCmd) Run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected LEFT and RIGHT, got %d argument(s). Run 'sift --help' for usage", c.Args().Len())
	}
	left, right := c.Args().Get(0), c.Args().Get(1)
	w := c.Root().Writer

	d, err := diffedit.Build(cmd.fsys, left, right, diffedit.Options{
		DirDiff: cmd.dirDiff,
		Include: cmd.include,
		Exclude: cmd.exclude,
	})
	if err != nil {
		return fmt.Errorf("compare %s and %s: %w", left, right, err)
	}
	if len(d.Files) == 0 {
		_, _ = fmt.Fprintln(w, "no changes")
		return nil
	}

	tree, err := difftree.New(d.Files)
	if err != nil {
		return err
	}

	res, err := cmd.flags.runSession(ctx, sessionInput{
		label:    left + " → " + right,
		tree:     tree,
		message:  cmd.message,
		readOnly: cmd.readOnly,
	})
	if err != nil {
		return err
	}
	if cmd.readOnly {
		return nil
	}

	changes := diffedit.Plan(d, res.Files)
	if cmd.dryRun {
		if err := diffedit.WriteSummary(w, changes, outputWidth(w)); err != nil {
			return err
		}
	} else if err := diffedit.Apply(cmd.fsys, changes); err != nil {
		return fmt.Errorf("write %s: %w", right, err)
	}

	if res.Message != "" {
		_, _ = fmt.Fprintln(w, res.Message)
	}
	return nil
}
