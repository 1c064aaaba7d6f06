package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Stdout and Stderr are where OK and Fail write.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var (
	forceColor   bool
	disableColor = termenv.EnvNoColor()
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable || termenv.EnvNoColor()
	applyColorProfile()
}

func applyColorProfile() {
	switch {
	case disableColor:
		lipgloss.SetColorProfile(termenv.Ascii)
	case forceColor:
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
	}
}

func OK(msg string) {
	fmt.Fprintln(Stdout, current.Success.Render(current.SymDone+" "+msg))
}

func Fail(msg string) {
	fmt.Fprintln(Stderr, current.Error.Render("✖ "+msg))
}

// Hint prints a muted follow-up line under a failure.
func Hint(msg string) {
	fmt.Fprintln(Stderr, current.Muted.Render("Hint: "+msg))
}
