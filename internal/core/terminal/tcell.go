package terminal

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

var errNotActive = errors.New("screen not initialized")

// Tcell implements Terminal on top of a tcell screen. tcell couples raw
// input with the alternate screen in Init/Fini, so EnableRaw creates and
// initializes a fresh screen and DisableRaw finalizes it; the alternate
// screen steps clear the buffer on either side. A new screen per EnableRaw
// lets a session suspend for an external program and come back.
type Tcell struct {
	newScreen func() (tcell.Screen, error)
	screen    tcell.Screen
}

// NewTcell returns a Terminal backed by the process's controlling terminal.
func NewTcell() *Tcell {
	return NewTcellWith(tcell.NewScreen)
}

// NewTcellWith uses factory to create screens. Tests pass a function
// returning tcell.NewSimulationScreen.
func NewTcellWith(factory func() (tcell.Screen, error)) *Tcell {
	return &Tcell{newScreen: factory}
}

// Screen exposes the current screen, nil when not entered.
func (t *Tcell) Screen() tcell.Screen { return t.screen }

func (t *Tcell) EnableRaw() error {
	s, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	t.screen = s
	return nil
}

func (t *Tcell) DisableRaw() error {
	if t.screen == nil {
		return nil
	}
	t.screen.Fini()
	t.screen = nil
	return nil
}

func (t *Tcell) EnterAltScreen() error {
	if t.screen == nil {
		return errNotActive
	}
	t.screen.Clear()
	t.screen.Sync()
	return nil
}

func (t *Tcell) ExitAltScreen() error {
	if t.screen == nil {
		return errNotActive
	}
	t.screen.Clear()
	t.screen.Show()
	return nil
}

func (t *Tcell) HideCursor() error {
	if t.screen == nil {
		return errNotActive
	}
	t.screen.HideCursor()
	return nil
}

func (t *Tcell) ShowCursor() error {
	if t.screen == nil {
		return errNotActive
	}
	t.screen.ShowCursor(0, 0)
	return nil
}

func (t *Tcell) EnableMouse() error {
	if t.screen == nil {
		return errNotActive
	}
	t.screen.EnableMouse(tcell.MouseButtonEvents)
	return nil
}

func (t *Tcell) DisableMouse() error {
	if t.screen == nil {
		return errNotActive
	}
	t.screen.DisableMouse()
	return nil
}

func (t *Tcell) Size() (int, int) {
	if t.screen == nil {
		return 0, 0
	}
	return t.screen.Size()
}

func (t *Tcell) Clear() {
	if t.screen != nil {
		t.screen.Clear()
	}
}

func (t *Tcell) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	if t.screen != nil {
		t.screen.SetContent(x, y, mainc, combc, style)
	}
}

func (t *Tcell) Show() error {
	if t.screen == nil {
		return fmt.Errorf("%w: %w", ErrTerminalIO, errNotActive)
	}
	t.screen.Show()
	return nil
}

// PollEvent skips events a session has no use for (focus, paste markers,
// interrupts) and returns the next key, mouse, or resize event.
func (t *Tcell) PollEvent() (Event, error) {
	for {
		if t.screen == nil {
			return nil, fmt.Errorf("%w: %w", ErrTerminalIO, errNotActive)
		}

		ev := t.screen.PollEvent()
		if ev == nil {
			return nil, fmt.Errorf("%w: screen closed", ErrTerminalIO)
		}

		if converted, ok := convertEvent(ev); ok {
			return converted, nil
		}
	}
}

func convertEvent(ev tcell.Event) (Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return convertKey(ev), true
	case *tcell.EventMouse:
		x, y := ev.Position()
		return MouseEvent{X: x, Y: y, Button: convertButtons(ev.Buttons()), Mod: convertMods(ev.Modifiers())}, true
	case *tcell.EventResize:
		w, h := ev.Size()
		return ResizeEvent{Width: w, Height: h}, true
	default:
		return nil, false
	}
}

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyBacktab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
}

func convertKey(ev *tcell.EventKey) KeyEvent {
	mods := convertMods(ev.Modifiers())

	if k, ok := tcellKeys[ev.Key()]; ok {
		return KeyEvent{Key: k, Mod: mods}
	}

	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := 'a' + rune(ev.Key()-tcell.KeyCtrlA)
		return KeyEvent{Key: KeyRune, Rune: r, Mod: mods | ModCtrl}
	}

	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if mods&ModCtrl != 0 {
			r = unicode.ToLower(r)
		}
		// Shift is already folded into the rune's case.
		return KeyEvent{Key: KeyRune, Rune: r, Mod: mods &^ ModShift}
	}

	return KeyEvent{Key: KeyNone, Mod: mods}
}

func convertMods(m tcell.ModMask) Modifier {
	var out Modifier
	if m&tcell.ModShift != 0 {
		out |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= ModAlt
	}
	return out
}

func convertButtons(b tcell.ButtonMask) MouseButton {
	switch {
	case b&tcell.WheelUp != 0:
		return WheelUp
	case b&tcell.WheelDown != 0:
		return WheelDown
	case b&tcell.Button1 != 0:
		return ButtonLeft
	case b&tcell.Button2 != 0:
		return ButtonRight
	default:
		return ButtonNone
	}
}
