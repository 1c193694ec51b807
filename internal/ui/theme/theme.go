package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha.
var (
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
)

var (
	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good  = lipgloss.NewStyle().Foreground(Green)
	Bad   = lipgloss.NewStyle().Foreground(Red)
	Trend = lipgloss.NewStyle().Foreground(Lavender)
)

// Frame is the bordered box a view draws its body in. Sizes below the
// border width collapse to zero.
func Frame(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Width(max(width-2, 0)).
		Height(max(height-2, 0))
}

// Congestion grades a travel time against a reference, usually the mean
// of the samples on screen.
type Congestion int

const (
	Clear Congestion = iota
	Busy
	Jammed
)

const (
	busyRatio   = 1.10
	jammedRatio = 1.35
)

func Grade(hours, reference float64) Congestion {
	if reference <= 0 {
		return Clear
	}
	switch ratio := hours / reference; {
	case ratio >= jammedRatio:
		return Jammed
	case ratio >= busyRatio:
		return Busy
	default:
		return Clear
	}
}

func (c Congestion) String() string {
	switch c {
	case Busy:
		return "busy"
	case Jammed:
		return "jammed"
	default:
		return "clear"
	}
}

func (c Congestion) Style() lipgloss.Style {
	switch c {
	case Busy:
		return lipgloss.NewStyle().Foreground(Yellow)
	case Jammed:
		return lipgloss.NewStyle().Foreground(Red).Bold(true)
	default:
		return Good
	}
}

// Hours renders a travel time coloured by its grade against reference.
func Hours(hours, reference float64) string {
	return Grade(hours, reference).Style().Render(fmt.Sprintf("%.2f h", hours))
}

// Delta renders a signed change between consecutive samples. Longer trips
// are drawn as bad news.
func Delta(d float64) string {
	style := Good
	if d > 0 {
		style = Bad
	}
	return style.Render(fmt.Sprintf("%+.2f h", d))
}
