package theme

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Default appearance colours.
const (
	DefaultForeground     = "#F8F8F2"
	DefaultBackground     = "#21222C"
	DefaultSelectionFg    = "#F8F8F2"
	DefaultSelectionBg    = "#6272A4"
	DefaultMatchHighlight = "#50FA7B"
	DefaultPromptColor    = "#BD93F9"
)

// ParseHex parses a "#RRGGBB" colour, returning fallback for anything else.
func ParseHex(value string, fallback color.RGBA) color.RGBA {
	c, ok := parse(value)
	if !ok {
		return fallback
	}
	return c
}

// MustHex parses one of the built-in default colours.
func MustHex(value string) color.RGBA {
	c, ok := parse(value)
	if !ok {
		panic("theme: invalid built-in colour " + value)
	}
	return c
}

// Valid reports whether value is a well-formed "#RRGGBB" colour.
func Valid(value string) bool {
	_, ok := parse(value)
	return ok
}

func parse(value string) (color.RGBA, bool) {
	value = strings.TrimSpace(value)
	if len(value) != 7 || value[0] != '#' {
		return color.RGBA{}, false
	}
	c, err := colorful.Hex(value)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}

// Styles describes the Lip Gloss styles used for terminal chrome around the
// rendered strip.
type Styles struct {
	Notice *lipgloss.Style
	Error  *lipgloss.Style
}

// NewStyles builds the chrome styles from the appearance colours.
func NewStyles(foreground, background, prompt string) *Styles {
	fg := hexOr(foreground, DefaultForeground)
	bg := hexOr(background, DefaultBackground)
	accent := hexOr(prompt, DefaultPromptColor)
	return &Styles{
		Notice: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg)).Padding(0, 1),
		),
		Error: ptr(
			lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true),
		),
	}
}

// Default exposes the styles for the built-in palette.
func Default() *Styles {
	return NewStyles(DefaultForeground, DefaultBackground, DefaultPromptColor)
}

func hexOr(value, fallback string) string {
	if Valid(value) {
		return strings.TrimSpace(value)
	}
	return fallback
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
