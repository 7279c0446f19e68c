package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/core/logging"
	"github.com/colonyops/sift/internal/core/terminal"
	"github.com/colonyops/sift/internal/tui"
	"github.com/colonyops/sift/internal/tui/layout"
	"github.com/colonyops/sift/pkg/executil"
)

var (
	// ErrCancelled is returned when the user quits a session without
	// confirming. Nothing has been written.
	ErrCancelled = errors.New("cancelled")

	// ErrNoTTY is returned when an interactive session has no terminal.
	ErrNoTTY = errors.New("sift needs an interactive terminal")
)

// sessionInput describes one interactive review.
type sessionInput struct {
	// label names the input in logs and the header.
	label    string
	tree     *difftree.Tree
	message  string
	readOnly bool
}

// runSession reviews in.tree on the configured terminal and returns the
// confirmed result. A cancelled session returns ErrCancelled.
func (f *Flags) runSession(ctx context.Context, in sessionInput) (tui.Result, error) {
	cfg := f.config()

	backend, exec := f.NewTerminal, f.Exec
	if backend == nil {
		tty, err := openTTY()
		if err != nil {
			return tui.Result{}, err
		}
		defer func() { _ = tty.Close() }()

		backend = func() terminal.Terminal { return terminal.NewTcell() }
		if exec == nil {
			exec = &executil.RealExecutor{Stdin: tty, Stdout: tty, Stderr: tty}
		}
	}
	if exec == nil {
		exec = &executil.RealExecutor{}
	}

	opts := tui.Options{
		Title:          in.label,
		Message:        in.message,
		ReadOnly:       in.readOnly,
		Mouse:          cfg.Mouse,
		StartCollapsed: cfg.StartCollapsed,
		Layout: layout.Options{
			MaxContentWidth: cfg.Layout.MaxContentWidth,
			MinColumnWidth:  cfg.Layout.MinColumnWidth,
			ContextLines:    cfg.Layout.ContextLines,
			AmbiguousWide:   cfg.Layout.AmbiguousWide,
		},
		Keybindings: cfg.Keybindings,
		Editor:      &tui.ExternalEditor{Exec: exec, Command: cfg.EditorCommand()},
	}

	ctx = logging.WithInput(ctx, in.label)
	res, err := tui.Run(ctx, in.tree, backend(), opts)
	if err != nil {
		return res, fmt.Errorf("session: %w", err)
	}
	if res.Outcome != tui.Confirmed {
		log := logging.Scoped(ctx, "commands")
		log.Info().Msg("session cancelled")
		return res, ErrCancelled
	}
	return res, nil
}

// openTTY opens the controlling terminal. tcell draws there even when
// stdin or stdout are redirected.
func openTTY() (*os.File, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}
	if !term.IsTerminal(int(tty.Fd())) {
		_ = tty.Close()
		return nil, ErrNoTTY
	}
	return tty, nil
}

// outputWidth is the column count of w when it is a terminal, or 0.
func outputWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
