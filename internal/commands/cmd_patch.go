package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/patchfilter"
)

type PatchCmd struct {
	flags *Flags

	file   string
	output string
}

// NewPatchCmd creates a new patch command.
func NewPatchCmd(flags *Flags) *PatchCmd {
	return &PatchCmd{flags: flags}
}

// Register adds the patch command to the application.
func (cmd *PatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "patch",
		Usage:     "Pick changes out of a unified patch",
		UsageText: "sift patch [-f FILE] [-o OUT]",
		Description: `Reads a unified or git-style patch, opens it for review, and writes a patch
holding only the selected changes.

Unselected added lines are dropped and unselected removed lines become
context, so the result applies to the same base as the input. Text before
the first file, such as a commit header, is shown as the message and kept
in the output.

Examples:
  git diff | sift patch > picked.patch
  sift patch -f change.patch -o picked.patch`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to patch file (reads from stdin if not provided)",
				Destination: &cmd.file,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write the filtered patch here instead of stdout",
				Destination: &cmd.output,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PatchCmd) run(ctx context.Context, c *cli.Command) error {
	p, label, err := cmd.read()
	if err != nil {
		return err
	}
	if len(p.Files) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "no changes")
		return nil
	}

	tree, err := difftree.New(p.Tree())
	if err != nil {
		return err
	}

	message := strings.TrimSpace(p.Preamble)
	res, err := cmd.flags.runSession(ctx, sessionInput{
		label:   label,
		tree:    tree,
		message: message,
	})
	if err != nil {
		return err
	}

	out, err := p.Filter(res.Files)
	if err != nil {
		return err
	}
	if res.Message != message {
		out.Preamble = ""
		if res.Message != "" {
			out.Preamble = res.Message + "\n\n"
		}
	}

	return cmd.write(c.Root().Writer, out.String())
}

func (cmd *PatchCmd) read() (*patchfilter.Patch, string, error) {
	if cmd.file != "" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return nil, "", fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()

		p, err := patchfilter.Parse(f)
		return p, cmd.file, err
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, "", fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe a patch")
	}
	p, err := patchfilter.Parse(os.Stdin)
	return p, "stdin", err
}

func (cmd *PatchCmd) write(w io.Writer, patch string) error {
	if cmd.output == "" {
		_, err := io.WriteString(w, patch)
		return err
	}
	if err := os.WriteFile(cmd.output, []byte(patch), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cmd.output, err)
	}
	return nil
}
