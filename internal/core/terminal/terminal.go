// Package terminal is the boundary between a review session and the real
// terminal. Terminal abstracts a cell-grid screen with raw input; Controller
// owns entering and leaving the terminal modes a session needs and always
// leaves them in reverse order.
package terminal

import (
	"errors"

	"github.com/gdamore/tcell/v2"
)

// ErrTerminalIO marks a failure of the underlying terminal.
var ErrTerminalIO = errors.New("terminal i/o")

// Terminal is the set of primitives a session needs. Mode changes come in
// pairs so the Controller can undo each one.
type Terminal interface {
	// EnableRaw puts the input into raw mode. DisableRaw restores it.
	EnableRaw() error
	DisableRaw() error

	// EnterAltScreen switches to the alternate screen buffer.
	EnterAltScreen() error
	ExitAltScreen() error

	HideCursor() error
	ShowCursor() error

	EnableMouse() error
	DisableMouse() error

	// Size returns the current width and height in cells.
	Size() (width, height int)

	// Clear blanks the back buffer.
	Clear()
	// SetContent writes one cell to the back buffer.
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	// Show flushes the back buffer to the terminal.
	Show() error

	// PollEvent blocks until the next input event.
	PollEvent() (Event, error)
}
