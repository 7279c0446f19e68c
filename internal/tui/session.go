// Package tui runs an interactive review session over a diff tree: it owns
// the terminal for the session's lifetime, turns input into selection and
// view changes, and returns the final selection.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/core/logging"
	"github.com/colonyops/sift/internal/core/selection"
	"github.com/colonyops/sift/internal/core/terminal"
	"github.com/colonyops/sift/internal/tui/dispatch"
	"github.com/colonyops/sift/internal/tui/layout"
	"github.com/colonyops/sift/internal/tui/view"
)

// Outcome is how a session ended.
type Outcome int

const (
	Cancelled Outcome = iota
	Confirmed
)

func (o Outcome) String() string {
	if o == Confirmed {
		return "confirmed"
	}
	return "cancelled"
}

// Result is what a session returns. Files and Message are only meaningful
// when Outcome is Confirmed.
type Result struct {
	Outcome Outcome
	Files   []difftree.File
	Message string
}

// Options configures a session.
type Options struct {
	// Title is shown in the header, typically the input being reviewed.
	Title string
	// Message is the initial commit message. The header shows it when set
	// and EditMessage opens it in Editor.
	Message string
	// ReadOnly shows the diff without allowing the selection to change.
	ReadOnly       bool
	Mouse          bool
	StartCollapsed bool
	Layout         layout.Options
	// Keybindings override the default keymap (key name to action name).
	Keybindings map[string]string
	// Editor edits the message. Nil disables EditMessage.
	Editor Editor
}

// state is the session's top-level mode.
type state int

const (
	interactive state = iota
	help
	suspended
	done
)

var stateNames = [...]string{"interactive", "help", "suspended", "done"}

func (s state) String() string { return stateNames[s] }

type session struct {
	ctx    context.Context
	log    zerolog.Logger
	opts   Options
	ctrl   *terminal.Controller
	term   terminal.Terminal
	keys   *dispatch.Dispatcher
	store  *selection.Store
	view   *view.State
	engine *layout.Engine

	state   state
	outcome Outcome
	message string

	// notice is a one-frame status message; noticeErr draws it as an error.
	notice    string
	noticeErr bool
	// follow keeps the cursor on screen after the next layout. Scrolling
	// clears it so the viewport can move away from the cursor.
	follow bool

	doc   *layout.Document
	frame []layout.DrawRow
}

// Run takes over term until the user confirms or cancels. The terminal is
// restored before Run returns, including when it panics. Terminal failures
// are returned wrapped in terminal.ErrTerminalIO; cancelling ctx ends the
// session with ctx's error.
func Run(ctx context.Context, tree *difftree.Tree, term terminal.Terminal, opts Options) (res Result, err error) {
	keys := dispatch.New()
	if err := keys.Override(opts.Keybindings); err != nil {
		return Result{}, fmt.Errorf("keybindings: %w", err)
	}
	if opts.Layout == (layout.Options{}) {
		opts.Layout = layout.DefaultOptions()
	}

	ctx = logging.NewSession(ctx)
	log := logging.Scoped(ctx, "session")

	s := &session{
		ctx:     ctx,
		log:     log,
		opts:    opts,
		ctrl:    terminal.NewController(term, terminal.ControllerOptions{Mouse: opts.Mouse}, log),
		term:    term,
		keys:    keys,
		store:   selection.New(tree),
		view:    view.New(tree, opts.StartCollapsed),
		engine:  layout.NewEngine(tree, opts.Layout),
		message: opts.Message,
		follow:  true,
	}

	if err := s.ctrl.Enter(); err != nil {
		return Result{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = s.ctrl.Exit()
			panic(r)
		}
		if exitErr := s.ctrl.Exit(); exitErr != nil {
			err = errors.Join(err, exitErr)
		}
	}()

	selected, total := s.store.Counts()
	log.Info().
		Int("files", len(tree.Roots())).
		Int("selected", selected).
		Int("selectable", total).
		Bool("read_only", opts.ReadOnly).
		Msg("session started")

	if err := s.loop(); err != nil {
		log.Error().Err(err).Msg("session failed")
		return Result{}, err
	}

	log.Info().Stringer("outcome", s.outcome).Msg("session ended")
	if s.outcome == Cancelled {
		return Result{Outcome: Cancelled}, nil
	}
	return Result{Outcome: Confirmed, Files: s.store.Files(), Message: s.message}, nil
}

func (s *session) loop() error {
	for s.state != done {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		if err := s.draw(); err != nil {
			return err
		}

		ev, err := s.term.PollEvent()
		if err != nil {
			return ioError("read event", err)
		}

		cmd := s.keys.Map(ev)
		if cmd.Action == dispatch.None {
			continue
		}
		s.log.Debug().
			Stringer("action", cmd.Action).
			Stringer("state", s.state).
			Msg("command")

		s.notice, s.noticeErr = "", false
		if err := s.handle(cmd); err != nil {
			return err
		}
	}
	return nil
}

// ioError wraps a backend failure so callers can match ErrTerminalIO.
func ioError(what string, err error) error {
	if errors.Is(err, terminal.ErrTerminalIO) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%w: %s: %w", terminal.ErrTerminalIO, what, err)
}

func (s *session) handle(cmd dispatch.Command) error {
	if cmd.Action == dispatch.Resize {
		s.follow = true
		return nil
	}

	if s.state == help {
		// Any key closes the help screen; clicks and the wheel do nothing.
		switch cmd.Action {
		case dispatch.Click, dispatch.ScrollDown, dispatch.ScrollUp:
		default:
			s.state = interactive
		}
		return nil
	}

	s.follow = true
	switch cmd.Action {
	case dispatch.Next:
		s.view.Next()
	case dispatch.Prev:
		s.view.Prev()
	case dispatch.NextSameKind:
		s.view.NextSameKind()
	case dispatch.PrevSameKind:
		s.view.PrevSameKind()
	case dispatch.FoldOuter:
		s.view.FoldOuter()
	case dispatch.Outer:
		s.view.Outer()
	case dispatch.Inner:
		s.view.Inner()
	case dispatch.ToggleFold:
		s.view.ToggleFold()
	case dispatch.ExpandAll:
		s.view.ExpandAll()
	case dispatch.ScrollDown:
		s.scroll(cmd.Lines)
	case dispatch.ScrollUp:
		s.scroll(-cmd.Lines)
	case dispatch.PageDown:
		s.follow = false
		s.view.ScrollPage(s.doc, s.bodyHeight(), 1)
	case dispatch.PageUp:
		s.follow = false
		s.view.ScrollPage(s.doc, s.bodyHeight(), -1)
	case dispatch.Toggle:
		s.toggle(s.view.Cursor())
	case dispatch.ToggleAndAdvance:
		if s.toggle(s.view.Cursor()) {
			s.view.Next()
		}
	case dispatch.ToggleAll:
		if s.writable() {
			s.logChanged("toggle all", s.store.ToggleAll())
		}
	case dispatch.ToggleAllUniform:
		if s.writable() {
			s.logChanged("toggle all uniform", s.store.ToggleAllUniform())
		}
	case dispatch.EditMessage:
		return s.editMessage()
	case dispatch.Help:
		s.state = help
	case dispatch.Confirm:
		s.outcome, s.state = Confirmed, done
	case dispatch.Cancel:
		s.outcome, s.state = Cancelled, done
	case dispatch.Click:
		s.click(cmd.X, cmd.Y)
	}
	return nil
}

func (s *session) scroll(lines int) {
	s.follow = false
	s.view.ScrollLines(s.doc, s.bodyHeight(), lines)
}

func (s *session) writable() bool {
	if s.opts.ReadOnly {
		s.notice = "read-only: the selection cannot change"
		return false
	}
	return true
}

// toggle flips a leaf, or a whole file or hunk when id has children.
func (s *session) toggle(id difftree.NodeID) bool {
	if id == difftree.NoNode || !s.writable() {
		return false
	}

	var (
		changed []difftree.NodeID
		err     error
	)
	if s.store.Tree().IsLeaf(id) {
		changed, err = s.store.Toggle(id)
	} else {
		changed, err = s.store.ToggleSubtree(id)
	}
	if err != nil {
		s.log.Warn().Err(err).Int("node", int(id)).Msg("toggle failed")
		return false
	}
	s.logChanged("toggle", changed)
	return true
}

func (s *session) logChanged(what string, changed []difftree.NodeID) {
	selected, total := s.store.Counts()
	s.log.Debug().
		Int("changed", len(changed)).
		Int("selected", selected).
		Int("selectable", total).
		Msg(what)
}

// click focuses the item under (x, y). A click on its checkbox also toggles
// it and a click on its fold marker folds or unfolds it.
func (s *session) click(x, y int) {
	i := y - bodyTop
	if i < 0 || i >= len(s.frame) {
		return
	}
	row := s.frame[i]
	if !row.Item || !s.view.FocusRow(s.doc, s.view.Offset()+i) {
		return
	}

	switch {
	case x >= row.CheckStart && x < row.CheckEnd:
		s.toggle(row.Node)
	case x >= row.FoldStart && x < row.FoldEnd:
		s.view.ToggleFold()
	}
	// The row is already on screen; keep the viewport where the user clicked.
	s.follow = false
}

// editMessage suspends the terminal around the editor. The session is in
// the suspended state only while the editor runs.
func (s *session) editMessage() error {
	if s.opts.Editor == nil {
		s.notice = "no editor configured"
		return nil
	}

	s.state = suspended
	var edited string
	var editErr error
	err := s.ctrl.Suspend(func() error {
		edited, editErr = s.opts.Editor.Edit(s.ctx, s.message)
		return nil
	})
	s.state = interactive

	if err != nil {
		return fmt.Errorf("resume after editor: %w", err)
	}
	if editErr != nil {
		s.log.Warn().Err(editErr).Msg("edit message failed")
		s.notice, s.noticeErr = editErr.Error(), true
		return nil
	}

	s.message = edited
	s.log.Debug().Int("length", len(edited)).Msg("message edited")
	return nil
}
