package terminal

import (
	"strings"
	"unicode"
)

// Event is an input event read from the terminal.
type Event interface {
	isEvent()
}

// Key identifies a non-printable key, or KeyRune for text input.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

var keyNames = map[Key]string{
	KeyEnter:     "enter",
	KeyEscape:    "esc",
	KeyTab:       "tab",
	KeyBacktab:   "shift+tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
}

// Modifier is a bit set of held modifier keys.
type Modifier int

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// KeyEvent is a key press. For KeyRune, Rune holds the character; ctrl+letter
// arrives as KeyRune with ModCtrl and a lowercase Rune.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mod  Modifier
}

func (KeyEvent) isEvent() {}

// String renders the key the way keybindings name it: "j", "J", "space",
// "ctrl+c", "shift+down", "alt+enter".
func (e KeyEvent) String() string {
	var sb strings.Builder
	if e.Mod&ModCtrl != 0 {
		sb.WriteString("ctrl+")
	}
	if e.Mod&ModAlt != 0 {
		sb.WriteString("alt+")
	}

	switch e.Key {
	case KeyRune:
		switch {
		case e.Rune == ' ':
			sb.WriteString("space")
		case e.Mod&ModCtrl != 0:
			sb.WriteRune(unicode.ToLower(e.Rune))
		default:
			sb.WriteRune(e.Rune)
		}
	case KeyBacktab:
		sb.WriteString(keyNames[KeyBacktab])
	default:
		if e.Mod&ModShift != 0 {
			sb.WriteString("shift+")
		}
		name, ok := keyNames[e.Key]
		if !ok {
			return ""
		}
		sb.WriteString(name)
	}

	return sb.String()
}

// MouseButton is the button state of a mouse event.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonRight
	WheelUp
	WheelDown
)

// MouseEvent is a click or wheel event at a cell position.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
	Mod    Modifier
}

func (MouseEvent) isEvent() {}

// ResizeEvent reports the new terminal size.
type ResizeEvent struct {
	Width, Height int
}

func (ResizeEvent) isEvent() {}

// Rune is a shorthand for a plain KeyRune event.
func Rune(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r}
}

// Ctrl is a shorthand for a ctrl+letter event.
func Ctrl(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: unicode.ToLower(r), Mod: ModCtrl}
}

// Press is a shorthand for a named key with optional modifiers.
func Press(k Key, mods ...Modifier) KeyEvent {
	e := KeyEvent{Key: k}
	for _, m := range mods {
		e.Mod |= m
	}
	return e
}
