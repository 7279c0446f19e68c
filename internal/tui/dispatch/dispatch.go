// Package dispatch maps terminal input to session commands. It performs no
// I/O and holds no session state.
package dispatch

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/colonyops/sift/internal/core/terminal"
)

// Action is what the session should do in response to one event.
type Action int

const (
	None Action = iota
	Next
	Prev
	NextSameKind
	PrevSameKind
	FoldOuter
	Outer
	Inner
	ToggleFold
	ExpandAll
	ScrollDown
	ScrollUp
	PageDown
	PageUp
	Toggle
	ToggleAndAdvance
	ToggleAll
	ToggleAllUniform
	EditMessage
	Help
	Confirm
	Cancel
	Click
	Resize
)

// actionNames are the names keybindings use in the config file.
var actionNames = map[Action]string{
	None:             "none",
	Next:             "next",
	Prev:             "prev",
	NextSameKind:     "next-same-kind",
	PrevSameKind:     "prev-same-kind",
	FoldOuter:        "fold-outer",
	Outer:            "outer",
	Inner:            "inner",
	ToggleFold:       "toggle-fold",
	ExpandAll:        "expand-all",
	ScrollDown:       "scroll-down",
	ScrollUp:         "scroll-up",
	PageDown:         "page-down",
	PageUp:           "page-up",
	Toggle:           "toggle",
	ToggleAndAdvance: "toggle-and-advance",
	ToggleAll:        "toggle-all",
	ToggleAllUniform: "toggle-all-uniform",
	EditMessage:      "edit-message",
	Help:             "help",
	Confirm:          "confirm",
	Cancel:           "cancel",
	Click:            "click",
	Resize:           "resize",
}

var actionHelp = map[Action]string{
	Next:             "next item",
	Prev:             "previous item",
	NextSameKind:     "next item of the same kind",
	PrevSameKind:     "previous item of the same kind",
	FoldOuter:        "fold, or move to the parent",
	Outer:            "move to the parent",
	Inner:            "unfold and enter",
	ToggleFold:       "fold or unfold",
	ExpandAll:        "unfold or fold everything",
	ScrollDown:       "scroll down one line",
	ScrollUp:         "scroll up one line",
	PageDown:         "page down",
	PageUp:           "page up",
	Toggle:           "toggle selection",
	ToggleAndAdvance: "toggle selection and move on",
	ToggleAll:        "invert every selection",
	ToggleAllUniform: "select or deselect everything",
	EditMessage:      "edit the commit message",
	Help:             "show this help",
	Confirm:          "apply the selection and quit",
	Cancel:           "quit without applying",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction resolves a config action name.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name && a != Click && a != Resize {
			return a, nil
		}
	}
	return None, fmt.Errorf("unknown action %q", name)
}

// ActionNames lists every name a keybinding may use, sorted.
func ActionNames() []string {
	names := make([]string, 0, len(actionNames))
	for a, n := range actionNames {
		if a != Click && a != Resize {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// Command is a mapped event. Lines is the scroll distance for scroll
// actions; X and Y carry the cell of a click; Width and Height the new size
// on resize.
type Command struct {
	Action        Action
	Lines         int
	X, Y          int
	Width, Height int
}

// WheelLines is how far one wheel notch scrolls.
const WheelLines = 3

var defaultBindings = map[string]Action{
	"j":          Next,
	"down":       Next,
	"k":          Prev,
	"up":         Prev,
	"J":          NextSameKind,
	"shift+down": NextSameKind,
	"K":          PrevSameKind,
	"shift+up":   PrevSameKind,
	"h":          FoldOuter,
	"left":       FoldOuter,
	"H":          Outer,
	"shift+left": Outer,
	"l":          Inner,
	"right":      Inner,
	"f":          ToggleFold,
	"F":          ExpandAll,
	"space":      Toggle,
	"enter":      ToggleAndAdvance,
	"a":          ToggleAll,
	"A":          ToggleAllUniform,
	"ctrl+e":     ScrollDown,
	"ctrl+y":     ScrollUp,
	"pgdown":     PageDown,
	"ctrl+d":     PageDown,
	"pgup":       PageUp,
	"ctrl+u":     PageUp,
	"e":          EditMessage,
	"?":          Help,
	"c":          Confirm,
	"q":          Cancel,
	"esc":        Cancel,
	"ctrl+c":     Cancel,
}

// Dispatcher holds a keymap.
type Dispatcher struct {
	keys map[string]Action
}

// New returns a dispatcher with the default keymap.
func New() *Dispatcher {
	return &Dispatcher{keys: maps.Clone(defaultBindings)}
}

// Override merges bindings (key name to action name) over the current
// keymap. The action "none" unbinds a key. ctrl+c always cancels so a
// session can never become impossible to leave.
func (d *Dispatcher) Override(bindings map[string]string) error {
	for key, name := range bindings {
		a, err := ParseAction(name)
		if err != nil {
			return fmt.Errorf("keybinding %q: %w", key, err)
		}
		if key == "ctrl+c" && a != Cancel {
			return fmt.Errorf("keybinding %q: ctrl+c is reserved for cancel", key)
		}
		if a == None {
			delete(d.keys, key)
			continue
		}
		d.keys[key] = a
	}
	return nil
}

// Map converts one event into exactly one command. Unknown input maps to
// None.
func (d *Dispatcher) Map(ev terminal.Event) Command {
	switch ev := ev.(type) {
	case terminal.KeyEvent:
		return d.key(ev)
	case terminal.MouseEvent:
		switch ev.Button {
		case terminal.ButtonLeft:
			return Command{Action: Click, X: ev.X, Y: ev.Y}
		case terminal.WheelDown:
			return Command{Action: ScrollDown, Lines: WheelLines}
		case terminal.WheelUp:
			return Command{Action: ScrollUp, Lines: WheelLines}
		}
	case terminal.ResizeEvent:
		return Command{Action: Resize, Width: ev.Width, Height: ev.Height}
	}
	return Command{Action: None}
}

func (d *Dispatcher) key(ev terminal.KeyEvent) Command {
	a, ok := d.keys[ev.String()]
	if !ok {
		return Command{Action: None}
	}
	cmd := Command{Action: a}
	if a == ScrollDown || a == ScrollUp {
		cmd.Lines = 1
	}
	return cmd
}

// HelpEntry is one line of the help screen.
type HelpEntry struct {
	Keys        []string
	Action      Action
	Description string
}

// Help lists bound actions with their keys, in action order.
func (d *Dispatcher) Help() []HelpEntry {
	byAction := map[Action][]string{}
	for key, a := range d.keys {
		byAction[a] = append(byAction[a], key)
	}

	actions := slices.Sorted(maps.Keys(byAction))
	entries := make([]HelpEntry, 0, len(actions))
	for _, a := range actions {
		keys := byAction[a]
		slices.SortFunc(keys, compareKeys)
		entries = append(entries, HelpEntry{Keys: keys, Action: a, Description: actionHelp[a]})
	}
	return entries
}

// compareKeys puts single characters first, then named keys, each group
// alphabetically.
func compareKeys(a, b string) int {
	if la, lb := len([]rune(a)) == 1, len([]rune(b)) == 1; la != lb {
		if la {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
