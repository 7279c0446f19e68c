package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/core/terminal"
	"github.com/colonyops/sift/internal/core/terminal/terminaltest"
	"github.com/colonyops/sift/pkg/executil"
)

// ids: a.go 0, hunk 1 (old 2, new 3), b.go 4, hunk 5 (x 6)
func fixture(t *testing.T) *difftree.Tree {
	t.Helper()
	tree, err := difftree.New([]difftree.File{
		{
			Path:     "a.go",
			Mode:     difftree.Unix(difftree.DefaultBits),
			Sections: []difftree.Section{difftree.NewChanged(difftree.RemovedLine("old\n"), difftree.AddedLine("new\n"))},
		},
		{
			Path:     "b.go",
			Mode:     difftree.Unix(difftree.DefaultBits),
			Sections: []difftree.Section{difftree.NewChanged(difftree.AddedLine("x\n"))},
		},
	})
	require.NoError(t, err)
	return tree
}

func click(x, y int) terminal.MouseEvent {
	return terminal.MouseEvent{X: x, Y: y, Button: terminal.ButtonLeft}
}

func selected(files []difftree.File) [][]bool {
	var out [][]bool
	for _, f := range files {
		var flags []bool
		for _, s := range f.Sections {
			for _, l := range s.Lines {
				flags = append(flags, l.Selected)
			}
		}
		out = append(out, flags)
	}
	return out
}

func TestRun_CancelRestoresTerminal(t *testing.T) {
	term := terminaltest.New(80, 20, terminal.Rune('q'))

	res, err := Run(context.Background(), fixture(t), term, Options{Mouse: true})
	require.NoError(t, err)

	assert.Equal(t, Cancelled, res.Outcome)
	assert.Nil(t, res.Files)
	assert.True(t, term.Balanced())
	assert.Equal(t, []string{
		"+raw", "+alt-screen", "+cursor", "+mouse",
		"-mouse", "-cursor", "-alt-screen", "-raw",
	}, term.Log)
}

func TestRun_ConfirmReturnsSelection(t *testing.T) {
	tests := []struct {
		name   string
		events []terminal.Event
		want   [][]bool
	}{
		{
			name:   "nothing toggled",
			events: []terminal.Event{terminal.Rune('c')},
			want:   [][]bool{{false, false}, {false}},
		},
		{
			name:   "toggle a file",
			events: []terminal.Event{terminal.Rune(' '), terminal.Rune('c')},
			want:   [][]bool{{true, true}, {false}},
		},
		{
			name:   "toggle one line",
			events: []terminal.Event{terminal.Rune('j'), terminal.Rune('j'), terminal.Rune(' '), terminal.Rune('c')},
			want:   [][]bool{{true, false}, {false}},
		},
		{
			name:   "toggle and advance",
			events: []terminal.Event{terminal.Rune('J'), terminal.Press(terminal.KeyEnter), terminal.Rune('c')},
			want:   [][]bool{{false, false}, {true}},
		},
		{
			name:   "toggle all twice is a no-op",
			events: []terminal.Event{terminal.Rune('a'), terminal.Rune('a'), terminal.Rune('c')},
			want:   [][]bool{{false, false}, {false}},
		},
		{
			name:   "uniform toggle selects everything",
			events: []terminal.Event{terminal.Rune('j'), terminal.Rune('j'), terminal.Rune(' '), terminal.Rune('A'), terminal.Rune('c')},
			want:   [][]bool{{true, true}, {true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := terminaltest.New(80, 20, tt.events...)

			res, err := Run(context.Background(), fixture(t), term, Options{})
			require.NoError(t, err)

			assert.Equal(t, Confirmed, res.Outcome)
			assert.Equal(t, tt.want, selected(res.Files))
			assert.True(t, term.Balanced())
		})
	}
}

func TestRun_FoldingKeepsSelection(t *testing.T) {
	toggle := []terminal.Event{terminal.Rune('j'), terminal.Rune('j'), terminal.Rune(' ')}
	folds := []terminal.Event{
		terminal.Rune('f'), terminal.Rune('h'),
		terminal.Rune('F'), terminal.Rune('F'),
		terminal.Rune('l'),
	}

	run := func(events ...terminal.Event) [][]bool {
		term := terminaltest.New(80, 20, append(events, terminal.Rune('c'))...)
		res, err := Run(context.Background(), fixture(t), term, Options{})
		require.NoError(t, err)
		require.Equal(t, Confirmed, res.Outcome)
		return selected(res.Files)
	}

	want := run(toggle...)
	assert.Equal(t, [][]bool{{true, false}, {false}}, want)
	assert.Equal(t, want, run(append(append([]terminal.Event{}, toggle...), folds...)...))
}

func TestRun_DrawsChrome(t *testing.T) {
	term := terminaltest.New(80, 10, terminal.Rune('q'))

	_, err := Run(context.Background(), fixture(t), term, Options{
		Title:   "left..right",
		Message: "feat: add x\n\nbody",
	})
	require.NoError(t, err)

	assert.Equal(t, " sift  left..right  │ feat: add x", term.Row(0))
	assert.Equal(t, "[-] ( ) a.go  +1 -1", term.Row(1))
	assert.Equal(t, "  [-] [ ] Section 1/1", term.Row(2))
	assert.Equal(t, "[-] [ ] b.go  +1 -0", term.Row(5))
	assert.Equal(t, " 0/3 selected  space toggle  c confirm  q cancel  ? help", term.Row(9))
}

func TestRun_ReadOnlyIgnoresToggles(t *testing.T) {
	term := terminaltest.New(80, 10, terminal.Rune(' '), terminal.Rune('a'), terminal.Rune('c'))

	res, err := Run(context.Background(), fixture(t), term, Options{ReadOnly: true})
	require.NoError(t, err)

	assert.Equal(t, Confirmed, res.Outcome)
	assert.Equal(t, [][]bool{{false, false}, {false}}, selected(res.Files))
	assert.Contains(t, term.Row(9), "read-only")
}

func TestRun_Clicks(t *testing.T) {
	t.Run("checkbox toggles", func(t *testing.T) {
		// Body starts at y=1: a.go, its hunk, then the removed line at y=3.
		term := terminaltest.New(80, 20, click(5, 3), terminal.Rune('c'))

		res, err := Run(context.Background(), fixture(t), term, Options{Mouse: true})
		require.NoError(t, err)
		assert.Equal(t, [][]bool{{true, false}, {false}}, selected(res.Files))
	})

	t.Run("fold marker folds", func(t *testing.T) {
		term := terminaltest.New(80, 20, click(1, 1), terminal.Rune('q'))

		_, err := Run(context.Background(), fixture(t), term, Options{Mouse: true})
		require.NoError(t, err)
		assert.Equal(t, "[+] ( ) a.go  +1 -1", term.Row(1))
		assert.Equal(t, "[-] [ ] b.go  +1 -0", term.Row(2))
	})

	t.Run("text focuses without toggling", func(t *testing.T) {
		term := terminaltest.New(80, 20, click(20, 5), terminal.Rune(' '), terminal.Rune('c'))

		res, err := Run(context.Background(), fixture(t), term, Options{Mouse: true})
		require.NoError(t, err)
		assert.Equal(t, [][]bool{{false, false}, {true}}, selected(res.Files))
	})

	t.Run("header is ignored", func(t *testing.T) {
		term := terminaltest.New(80, 20, click(5, 0), terminal.Rune('c'))

		res, err := Run(context.Background(), fixture(t), term, Options{Mouse: true})
		require.NoError(t, err)
		assert.Equal(t, [][]bool{{false, false}, {false}}, selected(res.Files))
	})
}

func TestRun_WheelScrollsAndPullsCursor(t *testing.T) {
	files := make([]difftree.File, 50)
	for i := range files {
		files[i] = difftree.File{
			Path:     fmt.Sprintf("f%02d.go", i),
			Mode:     difftree.Unix(difftree.DefaultBits),
			Sections: []difftree.Section{difftree.NewChanged(difftree.AddedLine("x\n"))},
		}
	}
	tree, err := difftree.New(files)
	require.NoError(t, err)

	term := terminaltest.New(80, 10,
		terminal.MouseEvent{Button: terminal.WheelDown},
		terminal.Rune('q'),
	)

	_, err = Run(context.Background(), tree, term, Options{Mouse: true})
	require.NoError(t, err)
	assert.Equal(t, "[-] ( ) f01.go  +1 -0", term.Row(1))
}

func TestRun_Help(t *testing.T) {
	t.Run("shows bindings", func(t *testing.T) {
		term := terminaltest.New(80, 40, terminal.Rune('?'))

		_, err := Run(context.Background(), fixture(t), term, Options{})
		require.ErrorIs(t, err, terminal.ErrTerminalIO, "events ran out while help was open")

		assert.Equal(t, " Keys (any key to close)", term.Row(1))
		// Keys pad to the widest binding list, "q, ctrl+c, esc".
		assert.Contains(t, term.Screen(), "  c"+strings.Repeat(" ", 15)+"apply the selection and quit")
		assert.True(t, term.Balanced())
	})

	t.Run("a key closes help without acting", func(t *testing.T) {
		term := terminaltest.New(80, 20, terminal.Rune('?'), terminal.Rune('q'), terminal.Rune('c'))

		res, err := Run(context.Background(), fixture(t), term, Options{})
		require.NoError(t, err)
		assert.Equal(t, Confirmed, res.Outcome)
	})
}

func TestRun_EditMessage(t *testing.T) {
	exec := &executil.RecordingExecutor{
		OnRun: func(rc executil.RecordedCommand) error {
			path := rc.Args[len(rc.Args)-1]
			return os.WriteFile(path, []byte("fix: edited\n"), 0o600)
		},
	}
	editor := &ExternalEditor{Exec: exec, Command: "vim", Dir: t.TempDir()}
	term := terminaltest.New(80, 20, terminal.Rune('e'), terminal.Rune('c'))

	res, err := Run(context.Background(), fixture(t), term, Options{Message: "draft", Editor: editor})
	require.NoError(t, err)

	assert.Equal(t, "fix: edited", res.Message)
	assert.Equal(t, " sift  │ fix: edited", term.Row(0))

	require.Len(t, exec.Commands, 1)
	rc := exec.Commands[0]
	assert.True(t, rc.TTY)
	assert.Equal(t, "sh", rc.Cmd)
	assert.Equal(t, []string{"-c", `vim "$@"`, "sift-editor"}, rc.Args[:3])

	assert.True(t, term.Balanced())
	assert.Equal(t, []string{
		"+raw", "+alt-screen", "+cursor",
		"-cursor", "-alt-screen", "-raw",
		"+raw", "+alt-screen", "+cursor",
		"-cursor", "-alt-screen", "-raw",
	}, term.Log, "the editor runs with the terminal restored")
}

func TestRun_EditMessageFailureKeepsMessage(t *testing.T) {
	exec := &executil.RecordingExecutor{Errors: map[string]error{"sh": errors.New("exit status 1")}}
	editor := &ExternalEditor{Exec: exec, Command: "vim", Dir: t.TempDir()}
	term := terminaltest.New(80, 20, terminal.Rune('e'), terminal.Rune('c'))

	res, err := Run(context.Background(), fixture(t), term, Options{Message: "draft", Editor: editor})
	require.NoError(t, err)

	assert.Equal(t, "draft", res.Message)
	assert.Contains(t, term.Row(19), "run editor")
	assert.True(t, term.Balanced())
}

func TestRun_NoEditor(t *testing.T) {
	term := terminaltest.New(80, 20, terminal.Rune('e'), terminal.Rune('c'))

	res, err := Run(context.Background(), fixture(t), term, Options{Message: "draft"})
	require.NoError(t, err)
	assert.Equal(t, "draft", res.Message)
	assert.Contains(t, term.Row(19), "no editor configured")
}

type panicEditor struct{}

func (panicEditor) Edit(context.Context, string) (string, error) { panic("editor exploded") }

func TestRun_PanicRestoresTerminal(t *testing.T) {
	term := terminaltest.New(80, 20, terminal.Rune('e'))

	assert.PanicsWithValue(t, "editor exploded", func() {
		_, _ = Run(context.Background(), fixture(t), term, Options{Editor: panicEditor{}})
	})
	assert.True(t, term.Balanced())
}

func TestRun_Errors(t *testing.T) {
	t.Run("enter failure unwinds", func(t *testing.T) {
		term := terminaltest.New(80, 20, terminal.Rune('q'))
		term.Fail["alt-screen"] = errors.New("no alt screen")

		_, err := Run(context.Background(), fixture(t), term, Options{})
		require.ErrorIs(t, err, terminal.ErrTerminalIO)
		assert.Equal(t, []string{"+raw", "-raw"}, term.Log)
	})

	t.Run("show failure", func(t *testing.T) {
		term := terminaltest.New(80, 20, terminal.Rune('q'))
		term.Fail["show"] = errors.New("broken pipe")

		_, err := Run(context.Background(), fixture(t), term, Options{})
		require.ErrorIs(t, err, terminal.ErrTerminalIO)
		assert.True(t, term.Balanced())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		term := terminaltest.New(80, 20, terminal.Rune('c'))

		_, err := Run(ctx, fixture(t), term, Options{})
		require.ErrorIs(t, err, context.Canceled)
		assert.True(t, term.Balanced())
	})

	t.Run("bad keybinding never touches the terminal", func(t *testing.T) {
		term := terminaltest.New(80, 20)

		_, err := Run(context.Background(), fixture(t), term, Options{Keybindings: map[string]string{"x": "explode"}})
		require.Error(t, err)
		assert.Empty(t, term.Log)
	})
}
