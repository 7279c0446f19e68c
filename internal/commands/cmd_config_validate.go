package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/sift/internal/core/config"
	"github.com/colonyops/sift/internal/core/styles"
	"github.com/colonyops/sift/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "sift config validate [options]",
				Description: "Loads the configuration file and checks the theme, layout limits, and keybindings.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationResult struct {
	Valid  bool     `json:"valid"`
	Path   string   `json:"path"`
	Error  string   `json:"error,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	result := validationResult{Valid: true, Path: cmd.flags.ConfigPath}
	if _, err := config.Load(cmd.flags.ConfigPath); err != nil {
		result.Valid = false
		result.Error = err.Error()
		result.Fields = config.Fields(err)
	}

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, result); err != nil {
			return err
		}
	} else {
		cmd.outputText(c, result)
	}

	if !result.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigValidateCmd) outputText(c *cli.Command, result validationResult) {
	w := c.Root().Writer
	if result.Valid {
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render("✓ "+result.Path+" is valid"))
		return
	}

	_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render("✗ "+result.Error))
	for _, f := range result.Fields {
		_, _ = fmt.Fprintln(w, "  "+styles.TextMutedStyle.Render(f))
	}
}
