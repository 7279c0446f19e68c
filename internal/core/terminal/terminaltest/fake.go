// Package terminaltest provides a scripted, recording terminal for tests.
package terminaltest

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/colonyops/sift/internal/core/terminal"
)

type cell struct {
	r     rune
	style tcell.Style
}

// Fake records every mode change, keeps a cell grid, and replays a fixed
// list of events. When the events run out PollEvent returns an error
// wrapping terminal.ErrTerminalIO.
type Fake struct {
	Width, Height int
	Events        []terminal.Event

	// Fail makes the named operation ("raw", "alt-screen", "cursor", "mouse",
	// "show", "poll") return the error.
	Fail map[string]error

	// Applied and Undone count successful mode changes by name.
	Applied map[string]int
	Undone  map[string]int
	// Log lists mode changes in the order they happened, e.g. "+raw", "-raw".
	Log []string
	// Shows counts flushed frames.
	Shows int

	grid [][]cell
}

var _ terminal.Terminal = (*Fake)(nil)

// New returns a fake terminal of the given size that will deliver events.
func New(width, height int, events ...terminal.Event) *Fake {
	f := &Fake{
		Width:   width,
		Height:  height,
		Events:  events,
		Fail:    map[string]error{},
		Applied: map[string]int{},
		Undone:  map[string]int{},
	}
	f.Clear()
	return f
}

func (f *Fake) apply(name string) error {
	if err := f.Fail[name]; err != nil {
		return err
	}
	f.Applied[name]++
	f.Log = append(f.Log, "+"+name)
	return nil
}

func (f *Fake) undo(name string) error {
	f.Undone[name]++
	f.Log = append(f.Log, "-"+name)
	return nil
}

func (f *Fake) EnableRaw() error      { return f.apply("raw") }
func (f *Fake) DisableRaw() error     { return f.undo("raw") }
func (f *Fake) EnterAltScreen() error { return f.apply("alt-screen") }
func (f *Fake) ExitAltScreen() error  { return f.undo("alt-screen") }
func (f *Fake) HideCursor() error     { return f.apply("cursor") }
func (f *Fake) ShowCursor() error     { return f.undo("cursor") }
func (f *Fake) EnableMouse() error    { return f.apply("mouse") }
func (f *Fake) DisableMouse() error   { return f.undo("mouse") }

func (f *Fake) Size() (int, int) { return f.Width, f.Height }

func (f *Fake) Clear() {
	f.grid = make([][]cell, f.Height)
	for y := range f.grid {
		f.grid[y] = make([]cell, f.Width)
		for x := range f.grid[y] {
			f.grid[y][x] = cell{r: ' '}
		}
	}
}

func (f *Fake) SetContent(x, y int, mainc rune, _ []rune, style tcell.Style) {
	if y < 0 || y >= len(f.grid) || x < 0 || x >= len(f.grid[y]) {
		return
	}
	f.grid[y][x] = cell{r: mainc, style: style}
}

func (f *Fake) Show() error {
	if err := f.Fail["show"]; err != nil {
		return err
	}
	f.Shows++
	return nil
}

func (f *Fake) PollEvent() (terminal.Event, error) {
	if err := f.Fail["poll"]; err != nil {
		return nil, err
	}
	if len(f.Events) == 0 {
		return nil, fmt.Errorf("%w: no more scripted events", terminal.ErrTerminalIO)
	}
	ev := f.Events[0]
	f.Events = f.Events[1:]

	if r, ok := ev.(terminal.ResizeEvent); ok {
		f.Width, f.Height = r.Width, r.Height
		f.Clear()
	}
	return ev, nil
}

// Balanced reports whether every applied mode has been undone exactly once.
func (f *Fake) Balanced() bool {
	for name, n := range f.Applied {
		if f.Undone[name] != n {
			return false
		}
	}
	for name, n := range f.Undone {
		if f.Applied[name] != n {
			return false
		}
	}
	return true
}

// Row returns the text of row y with trailing spaces trimmed. Wide
// characters occupy their first cell; continuation cells are skipped.
func (f *Fake) Row(y int) string {
	if y < 0 || y >= len(f.grid) {
		return ""
	}
	var sb strings.Builder
	for _, c := range f.grid[y] {
		if c.r == 0 {
			continue
		}
		sb.WriteRune(c.r)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Screen returns every row, trimmed.
func (f *Fake) Screen() []string {
	rows := make([]string, len(f.grid))
	for y := range f.grid {
		rows[y] = f.Row(y)
	}
	return rows
}

// StyleAt returns the style of a cell.
func (f *Fake) StyleAt(x, y int) tcell.Style {
	if y < 0 || y >= len(f.grid) || x < 0 || x >= len(f.grid[y]) {
		return tcell.StyleDefault
	}
	return f.grid[y][x].style
}
