package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/taskflow/pkg/domain"
)

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474")).
				Bold(true)

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	// Notifications
	noteSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ade80"))

	noteErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171")).
			Bold(true)

	// Progress bar cells
	progressFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474"))
	progressEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a2f3a"))

	avatarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111118")).
			Background(lipgloss.Color("#4ade80")).
			Bold(true).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1e1e2a")).
			Padding(0, 1)

	cardSelectedStyle = cardStyle.
				BorderForeground(lipgloss.Color("#34d474"))

	// Task status colors
	statusColors = map[domain.TaskStatus]lipgloss.Color{
		domain.StatusPending:    lipgloss.Color("#f59e0b"),
		domain.StatusInProgress: lipgloss.Color("#22d3ee"),
		domain.StatusCompleted:  lipgloss.Color("#4ade80"),
	}
)

// StatusStyle returns the badge style for a task status.
func StatusStyle(s domain.TaskStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// StatusBadge renders "[in progress]" in the status color.
func StatusBadge(s domain.TaskStatus) string {
	return StatusStyle(s).Render("[" + s.Label() + "]")
}

// progressBar renders pct (0-100) as a bar of width cells.
func progressBar(pct float64, width int) string {
	if width < 4 {
		width = 4
	}
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))
	return progressFillStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled)) +
		" " + metaStyle.Render(fmt.Sprintf("%.0f%%", pct))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpLine joins help entries given as key/label pairs.
func helpLine(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
