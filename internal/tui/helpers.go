package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/taskflow/pkg/domain"
)

// formatCreated renders a project's creation time relative to now.
func formatCreated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// formatDue renders a due date, marking it when the task is overdue.
func formatDue(t domain.Task, now time.Time) string {
	if t.DueDate.IsZero() {
		return metaStyle.Render("no due date")
	}
	s := "due " + t.DueDate.Format("Jan 2, 2006")
	if t.IsOverdue(now) {
		return rejectStyle.Render(s + " (overdue)")
	}
	return metaStyle.Render(s)
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// lineCount returns the number of lines s occupies on screen.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
