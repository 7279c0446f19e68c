package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/pkg/iojson"
)

type LoadCmd struct {
	flags  *Flags
	reader iojson.FileReader[difftree.Snapshot]
}

// NewLoadCmd creates a new load command.
func NewLoadCmd(flags *Flags) *LoadCmd {
	return &LoadCmd{flags: flags}
}

// Register adds the load command to the application.
func (cmd *LoadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "load",
		Usage:     "Review a diff tree stored as JSON",
		UsageText: "sift load [-f FILE]",
		Description: `Reads a JSON document of files and sections, opens it for review, and
prints the same document with the final selection on confirm.

The document has the form:

  {"message": "...", "files": [{"path": "a.go", "mode": "100644",
    "sections": [{"kind": "changed", "lines": [{"kind": "added", "text": "x\n"}]}]}]}

Validation errors name the offending field, for example files[1].sections[0].`,
		Flags:  []cli.Flag{cmd.reader.Flag()},
		Action: cmd.run,
	})

	return app
}

func (cmd *LoadCmd) run(ctx context.Context, c *cli.Command) error {
	snap, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	tree, err := snap.Build()
	if err != nil {
		return err
	}

	res, err := cmd.flags.runSession(ctx, sessionInput{
		label:   cmd.reader.Source(),
		tree:    tree,
		message: snap.Message,
	})
	if err != nil {
		return err
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, difftree.Snapshot{
		Message: res.Message,
		Files:   res.Files,
	})
}
