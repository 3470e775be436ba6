// Package styles provides the lipgloss styles used by CLI output.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic palette.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// TokyoNight is the default palette.
var TokyoNight = Palette{
	Primary:    lipgloss.Color("#7aa2f7"),
	Foreground: lipgloss.Color("#c0caf5"),
	Muted:      lipgloss.Color("#565f89"),
	Success:    lipgloss.Color("#9ece6a"),
	Warning:    lipgloss.Color("#e0af68"),
	Error:      lipgloss.Color("#f7768e"),
}

var (
	TitleStyle   lipgloss.Style
	LabelStyle   lipgloss.Style
	ValueStyle   lipgloss.Style
	DoneStyle    lipgloss.Style
	CurrentStyle lipgloss.Style
	TodoStyle    lipgloss.Style
	WarnStyle    lipgloss.Style
	ErrorStyle   lipgloss.Style
)

func init() {
	SetPalette(TokyoNight)
}

// SetPalette rebuilds the package styles from p.
func SetPalette(p Palette) {
	TitleStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	LabelStyle = lipgloss.NewStyle().Foreground(p.Muted)
	ValueStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	DoneStyle = lipgloss.NewStyle().Foreground(p.Success)
	CurrentStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	TodoStyle = lipgloss.NewStyle().Foreground(p.Muted)
	WarnStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
}

// Steps renders a lifecycle as a chain of labels, marking the steps before
// current as done. A negative current renders every step as pending.
func Steps(labels []string, current int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		switch {
		case current < 0 || i > current:
			parts[i] = TodoStyle.Render("○ " + l)
		case i < current:
			parts[i] = DoneStyle.Render("● " + l)
		default:
			parts[i] = CurrentStyle.Render("◉ " + l)
		}
	}
	return strings.Join(parts, TodoStyle.Render(" ─ "))
}

// Bar renders fraction as a fixed width bar followed by a percentage.
func Bar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	return DoneStyle.Render(strings.Repeat("█", filled)) +
		TodoStyle.Render(strings.Repeat("░", width-filled)) +
		ValueStyle.Render(fmt.Sprintf(" %3.0f%%", fraction*100))
}

// Field renders a label and value pair on one line.
func Field(label, value string) string {
	return LabelStyle.Render(fmt.Sprintf("%-16s", label)) + ValueStyle.Render(value)
}
