package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/sift/internal/core/terminal"
)

func TestMap_DefaultKeys(t *testing.T) {
	d := New()

	tests := []struct {
		ev   terminal.Event
		want Action
	}{
		{terminal.Rune('j'), Next},
		{terminal.Press(terminal.KeyDown), Next},
		{terminal.Rune('J'), NextSameKind},
		{terminal.Press(terminal.KeyDown, terminal.ModShift), NextSameKind},
		{terminal.Press(terminal.KeyUp, terminal.ModShift), PrevSameKind},
		{terminal.Press(terminal.KeyLeft), FoldOuter},
		{terminal.Press(terminal.KeyLeft, terminal.ModShift), Outer},
		{terminal.Rune('H'), Outer},
		{terminal.Press(terminal.KeyRight), Inner},
		{terminal.Rune('f'), ToggleFold},
		{terminal.Rune('F'), ExpandAll},
		{terminal.Rune(' '), Toggle},
		{terminal.Press(terminal.KeyEnter), ToggleAndAdvance},
		{terminal.Rune('a'), ToggleAll},
		{terminal.Rune('A'), ToggleAllUniform},
		{terminal.Press(terminal.KeyPageDown), PageDown},
		{terminal.Ctrl('u'), PageUp},
		{terminal.Rune('e'), EditMessage},
		{terminal.Rune('?'), Help},
		{terminal.Rune('c'), Confirm},
		{terminal.Rune('q'), Cancel},
		{terminal.Press(terminal.KeyEscape), Cancel},
		{terminal.Ctrl('c'), Cancel},
		{terminal.Rune('z'), None},
		{terminal.Press(terminal.KeyNone), None},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Map(tt.ev).Action, "event %+v", tt.ev)
	}
}

func TestMap_ScrollDistances(t *testing.T) {
	d := New()

	assert.Equal(t, Command{Action: ScrollDown, Lines: 1}, d.Map(terminal.Ctrl('e')))
	assert.Equal(t, Command{Action: ScrollUp, Lines: 1}, d.Map(terminal.Ctrl('y')))
	assert.Equal(t, Command{Action: ScrollDown, Lines: WheelLines}, d.Map(terminal.MouseEvent{Button: terminal.WheelDown}))
	assert.Equal(t, Command{Action: ScrollUp, Lines: WheelLines}, d.Map(terminal.MouseEvent{Button: terminal.WheelUp}))
}

func TestMap_MouseAndResize(t *testing.T) {
	d := New()

	assert.Equal(t, Command{Action: Click, X: 5, Y: 2}, d.Map(terminal.MouseEvent{X: 5, Y: 2, Button: terminal.ButtonLeft}))
	assert.Equal(t, Command{Action: None}, d.Map(terminal.MouseEvent{X: 5, Y: 2, Button: terminal.ButtonRight}))
	assert.Equal(t, Command{Action: None}, d.Map(terminal.MouseEvent{X: 5, Y: 2}))
	assert.Equal(t, Command{Action: Resize, Width: 100, Height: 30}, d.Map(terminal.ResizeEvent{Width: 100, Height: 30}))
}

func TestOverride(t *testing.T) {
	d := New()

	require.NoError(t, d.Override(map[string]string{
		"x":    "confirm",
		"c":    "none",
		"down": "page-down",
	}))

	assert.Equal(t, Confirm, d.Map(terminal.Rune('x')).Action)
	assert.Equal(t, None, d.Map(terminal.Rune('c')).Action)
	assert.Equal(t, PageDown, d.Map(terminal.Press(terminal.KeyDown)).Action)
	assert.Equal(t, Next, d.Map(terminal.Rune('j')).Action, "other defaults survive")
}

func TestOverride_Errors(t *testing.T) {
	d := New()

	err := d.Override(map[string]string{"x": "launch-rockets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "launch-rockets"`)

	err = d.Override(map[string]string{"ctrl+c": "none"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")

	_, err = ParseAction("click")
	require.Error(t, err, "click is not bindable")
}

func TestHelp(t *testing.T) {
	entries := New().Help()
	require.NotEmpty(t, entries)

	assert.Equal(t, Next, entries[0].Action)
	assert.Equal(t, []string{"j", "down"}, entries[0].Keys)
	assert.Equal(t, "next item", entries[0].Description)

	for _, e := range entries {
		assert.NotEmpty(t, e.Description, "action %s", e.Action)
	}
}

func TestActionNames(t *testing.T) {
	names := ActionNames()
	assert.Contains(t, names, "toggle-all-uniform")
	assert.Contains(t, names, "none")
	assert.NotContains(t, names, "click")
	assert.IsIncreasing(t, names)
}
