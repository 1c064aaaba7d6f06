package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette, symbols and border.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help, Grab                    lipgloss.Style

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
	SymGrab                  string

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor
}

// Palette of the web build: primary blue and checkbox green.
const (
	colorPrimary = "#1976d2"
	colorSuccess = "#4caf50"
)

var current = ByName("classic")

// ByName returns a theme by name; unknown names fall back to classic.
func ByName(name string) Theme {
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:     "neon",
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
			Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
			Help:     lipgloss.NewStyle().Faint(true),
			Grab:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),

			BoxUnchecked: "◻", BoxChecked: "◼",
			SymDone: "✔", SymPending: "•", SymGrab: "≡",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),
		}
	case "mono":
		plain := lipgloss.NewStyle()
		return Theme{
			Name:  "mono",
			Title: plain.Bold(true), Muted: plain, Accent: plain,
			Success: plain, Error: plain.Bold(true), Pending: plain,
			Selected: plain.Reverse(true), Done: plain, Help: plain, Grab: plain.Bold(true),

			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-", SymGrab: "=",
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.NoColor{},
		}
	default: // classic
		return Theme{
			Name:     "classic",
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorPrimary)),
			Muted:    lipgloss.NewStyle().Faint(true),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary)),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess)),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
			Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
			Help:     lipgloss.NewStyle().Faint(true),
			Grab:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorPrimary)),

			BoxUnchecked: "☐", BoxChecked: "☑",
			SymDone: "✔", SymPending: "•", SymGrab: "≡",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("8"),
		}
	}
}

func SetTheme(name string) {
	current = ByName(name)
	if current.Name == "mono" {
		disableColor = true
		applyColorProfile()
	}
}

// Expose what renderers need
func Current() Theme { return current }
