// Package styles holds the colour theme: lipgloss styles for CLI output and
// tcell styles for the interactive screen, both derived from one Palette.
package styles

import (
	"fmt"
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// CLI styles.
var (
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style
)

// ScreenStyles are the styles of the interactive session.
type ScreenStyles struct {
	Base      tcell.Style
	Muted     tcell.Style
	File      tcell.Style
	Section   tcell.Style
	Checkbox  tcell.Style
	Gutter    tcell.Style
	Added     tcell.Style
	Removed   tcell.Style
	Context   tcell.Style
	Separator tcell.Style

	// FocusBackground replaces the background of every cell in the focused
	// row.
	FocusBackground tcell.Color

	Header    tcell.Style
	Status    tcell.Style
	StatusKey tcell.Style
	Error     tcell.Style
}

// Screen is rebuilt by SetTheme.
var Screen ScreenStyles

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	base := tcell.StyleDefault.Foreground(ToTcell(p.Foreground))
	bar := base.Background(ToTcell(p.Surface))

	Screen = ScreenStyles{
		Base:      base,
		Muted:     base.Foreground(ToTcell(p.Muted)),
		File:      base.Foreground(ToTcell(p.Primary)).Bold(true),
		Section:   base.Foreground(ToTcell(p.Secondary)),
		Checkbox:  base.Foreground(ToTcell(p.Primary)),
		Gutter:    base.Foreground(ToTcell(p.Muted)),
		Added:     base.Foreground(ToTcell(p.Success)).Background(ToTcell(Blend(p.Background, p.Success, 0.15))),
		Removed:   base.Foreground(ToTcell(p.Error)).Background(ToTcell(Blend(p.Background, p.Error, 0.15))),
		Context:   base,
		Separator: base.Foreground(ToTcell(p.Surface)),

		FocusBackground: ToTcell(p.Surface),

		Header:    bar.Bold(true),
		Status:    bar.Foreground(ToTcell(p.Muted)),
		StatusKey: bar.Foreground(ToTcell(p.Primary)).Bold(true),
		Error:     bar.Foreground(ToTcell(p.Error)).Bold(true),
	}
}

// UseTheme activates a built-in theme by name.
func UseTheme(name string) error {
	p, ok := GetPalette(name)
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	SetTheme(p)
	return nil
}

// ToTcell converts a palette colour to a true-colour tcell colour. tcell
// downsamples on terminals with fewer colours.
func ToTcell(c color.Color) tcell.Color {
	if c == nil {
		return tcell.ColorDefault
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return tcell.ColorDefault
	}
	r, g, b := cc.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Blend mixes b into a by t (0 is a, 1 is b) in Lab space.
func Blend(a, b color.Color, t float64) color.Color {
	if a == nil || b == nil {
		if a == nil {
			return b
		}
		return a
	}

	ca, okA := colorful.MakeColor(a)
	cb, okB := colorful.MakeColor(b)
	switch {
	case !okA:
		return b
	case !okB:
		return a
	}
	return ca.BlendLab(cb, t).Clamped()
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
