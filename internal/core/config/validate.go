package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/sift/internal/core/styles"
	"github.com/colonyops/sift/internal/tui/dispatch"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("theme", c.Theme, knownTheme),
		criterio.Run("layout.min_column_width", c.Layout.MinColumnWidth, atLeast(1)),
		criterio.Run("layout.max_content_width", c.Layout.MaxContentWidth, atLeast(2*c.Layout.MinColumnWidth)),
		criterio.Run("layout.context_lines", c.Layout.ContextLines, atLeast(0)),
		c.validateKeybindings(),
	)
}

func (c *Config) validateKeybindings() error {
	var errs criterio.FieldErrorsBuilder
	for key, action := range c.Keybindings {
		field := "keybindings." + key
		switch {
		case strings.TrimSpace(key) == "":
			errs = errs.Append("keybindings", errors.New("key name cannot be empty"))
		case strings.TrimSpace(action) == "":
			errs = errs.Append(field, errors.New("action is required (use \"none\" to unbind)"))
		default:
			a, err := dispatch.ParseAction(action)
			if err != nil {
				errs = errs.Append(field, fmt.Errorf("%w (available: %s)", err, strings.Join(dispatch.ActionNames(), ", ")))
				continue
			}
			if key == "ctrl+c" && a != dispatch.Cancel {
				errs = errs.Append(field, errors.New("ctrl+c is reserved for cancel"))
			}
		}
	}
	return errs.ToError()
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func atLeast(n int) func(int) error {
	return func(v int) error {
		if v < n {
			return fmt.Errorf("must be at least %d, got %d", n, v)
		}
		return nil
	}
}

// Fields lists the fields named by a validation error, sorted. Useful for
// messages and tests.
func Fields(err error) []string {
	var fe criterio.FieldErrors
	if !errors.As(err, &fe) {
		return nil
	}
	out := make([]string, 0, len(fe))
	for _, e := range fe {
		out = append(out, e.Field)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
