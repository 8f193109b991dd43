package theme

import (
	"github.com/charmbracelet/lipgloss"

	sessiondomain "demoprep/internal/modules/session/domain"
)

var (
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Check = lipgloss.NewStyle().Foreground(Green).Bold(true)
)

// Notice colours a notice line by severity.
func Notice(level sessiondomain.NoticeLevel) lipgloss.Style {
	switch level {
	case sessiondomain.NoticeError:
		return lipgloss.NewStyle().Foreground(Red).Bold(true)
	case sessiondomain.NoticeWarning:
		return lipgloss.NewStyle().Foreground(Yellow)
	case sessiondomain.NoticeSuccess:
		return lipgloss.NewStyle().Foreground(Green)
	}
	return lipgloss.NewStyle().Foreground(Sapphire)
}
