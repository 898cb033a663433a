// Package replay renders mission records as a styled timeline.
package replay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color scheme - each actor in the mission loop has a consistent color.
var (
	// Structural / metadata
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - timestamps, metadata

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - labels

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")) // White - values

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")) // White bold - headers

	// Planner turns - Blue
	plannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	// Worker turns - Magenta
	workerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	// Analysis verdicts - Cyan
	analysisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	// Outcomes
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")) // Green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")) // Yellow

	// Timeline
	seqStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(5).
			Align(lipgloss.Right)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	divider = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(strings.Repeat("━", 60))
)
