package terminal

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// mode is one reversible terminal mode change.
type mode struct {
	name  string
	apply func() error
	undo  func() error
}

type undoEntry struct {
	name string
	fn   func() error
}

// ControllerOptions selects optional modes.
type ControllerOptions struct {
	Mouse bool
}

// Controller enters the terminal modes of a session and leaves them again.
// Every mode applied successfully pushes its undo; Exit pops them last in,
// first out, so a mode is never unset while one enabled after it is still
// active.
type Controller struct {
	term  Terminal
	modes []mode
	stack []undoEntry
	log   zerolog.Logger
}

// NewController builds a controller for term. Modes are applied in order:
// raw input, alternate screen, hidden cursor, then mouse reporting.
func NewController(term Terminal, opts ControllerOptions, log zerolog.Logger) *Controller {
	modes := []mode{
		{name: "raw", apply: term.EnableRaw, undo: term.DisableRaw},
		{name: "alt-screen", apply: term.EnterAltScreen, undo: term.ExitAltScreen},
		{name: "cursor", apply: term.HideCursor, undo: term.ShowCursor},
	}
	if opts.Mouse {
		modes = append(modes, mode{name: "mouse", apply: term.EnableMouse, undo: term.DisableMouse})
	}

	return &Controller{term: term, modes: modes, log: log}
}

// Terminal returns the controlled terminal.
func (c *Controller) Terminal() Terminal { return c.term }

// Depth is the number of modes currently applied.
func (c *Controller) Depth() int { return len(c.stack) }

// Active reports whether any mode is applied.
func (c *Controller) Active() bool { return len(c.stack) > 0 }

// Enter applies every mode. If one fails, the modes already applied are
// undone before the error is returned.
func (c *Controller) Enter() error {
	if c.Active() {
		return nil
	}

	for _, m := range c.modes {
		if err := m.apply(); err != nil {
			c.log.Error().Err(err).Str("mode", m.name).Msg("enter terminal mode failed")
			if uerr := c.Exit(); uerr != nil {
				err = errors.Join(err, uerr)
			}
			return fmt.Errorf("%w: enter %s: %w", ErrTerminalIO, m.name, err)
		}
		c.stack = append(c.stack, undoEntry{name: m.name, fn: m.undo})
		c.log.Debug().Str("mode", m.name).Msg("entered terminal mode")
	}

	return nil
}

// Exit undoes every applied mode in reverse order. All undos run even when
// one fails; the failures are joined.
func (c *Controller) Exit() error {
	var errs []error
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]

		if err := top.fn(); err != nil {
			c.log.Error().Err(err).Str("mode", top.name).Msg("leave terminal mode failed")
			errs = append(errs, fmt.Errorf("leave %s: %w", top.name, err))
			continue
		}
		c.log.Debug().Str("mode", top.name).Msg("left terminal mode")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrTerminalIO, errors.Join(errs...))
	}
	return nil
}

// Suspend leaves the terminal for fn and re-enters afterwards through the
// same Enter path. The terminal is re-entered even when fn fails.
func (c *Controller) Suspend(fn func() error) error {
	if err := c.Exit(); err != nil {
		return err
	}

	fnErr := fn()
	if err := c.Enter(); err != nil {
		return errors.Join(fnErr, err)
	}
	return fnErr
}
