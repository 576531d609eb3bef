// Package ui holds output styling shared by CLI commands.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// PassStyle renders success markers.
	PassStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// WarnStyle renders warnings.
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	// FailStyle renders failures.
	FailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// MutedStyle renders supplementary detail.
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// HeaderStyle renders section headers in list output.
	HeaderStyle = lipgloss.NewStyle().Bold(true)
)

// RenderPassIcon returns the success marker, colored when appropriate.
func RenderPassIcon() string {
	if !ShouldUseColor() {
		return "[ok]"
	}
	return PassStyle.Render("✓")
}

// RenderFailIcon returns the failure marker.
func RenderFailIcon() string {
	if !ShouldUseColor() {
		return "[fail]"
	}
	return FailStyle.Render("✗")
}

// RenderWarnIcon returns the warning marker.
func RenderWarnIcon() string {
	if !ShouldUseColor() {
		return "[warn]"
	}
	return WarnStyle.Render("!")
}

// RenderMuted renders supplementary text in the muted style.
func RenderMuted(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return MutedStyle.Render(s)
}
