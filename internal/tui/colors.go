package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Marker symbols used by the stack view
const (
	CurrentBranchSymbol = "◉"
	BranchSymbol        = "◯"
	ProtectedSymbol     = "◆"
)

// IsTerminal reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConfigureColors turns styling off when stdout is not a terminal or NO_COLOR is set
func ConfigureColors(enabled bool) {
	if !enabled || os.Getenv("NO_COLOR") != "" || !IsTerminal(os.Stdout) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

var (
	currentBranchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	branchStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	protectedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	pushableStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ColorBranchName colors a branch name, highlighting HEAD
func ColorBranchName(name string, isCurrent bool) string {
	if isCurrent {
		return currentBranchStyle.Render(name)
	}
	return branchStyle.Render(name)
}

// ColorProtected colors protected markers
func ColorProtected(text string) string {
	return protectedStyle.Render(text)
}

// ColorPushable colors pushable markers
func ColorPushable(text string) string {
	return pushableStyle.Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return warningStyle.Render(text)
}

// ColorDim makes text dim
func ColorDim(text string) string {
	return dimStyle.Render(text)
}
