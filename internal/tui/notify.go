package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/pkg/client"
)

// noteTTL is how long a notification stays on screen.
var noteTTL = 4 * time.Second

// genericError is shown when the server gives no usable message.
const genericError = "Something went wrong, please try again"

type noteLevel int

const (
	noteSuccess noteLevel = iota
	noteError
)

// notifyMsg asks the app to show a transient notification.
type notifyMsg struct {
	level noteLevel
	text  string
}

// noteExpiredMsg clears notification id if it is still the one shown.
type noteExpiredMsg struct{ id int }

type notification struct {
	id    int
	level noteLevel
	text  string
}

func notify(level noteLevel, text string) tea.Cmd {
	return func() tea.Msg { return notifyMsg{level: level, text: text} }
}

func notifySuccess(text string) tea.Cmd { return notify(noteSuccess, text) }

func notifyError(text string) tea.Cmd { return notify(noteError, text) }

// notifyErr shows the server's message for err, or fallback.
func notifyErr(err error, fallback string) tea.Cmd {
	return notifyError(client.MessageOr(err, fallback))
}

func expireNote(id int) tea.Cmd {
	return tea.Tick(noteTTL, func(time.Time) tea.Msg { return noteExpiredMsg{id: id} })
}

func (n notification) View() string {
	if n.text == "" {
		return ""
	}
	if n.level == noteError {
		return " " + noteErrorStyle.Render("✗ "+n.text)
	}
	return " " + noteSuccessStyle.Render("✓ "+n.text)
}

// notifyAPIErr is notifyErr for calls on protected endpoints. A 401 there
// has already expired the session, which brings its own notification.
func notifyAPIErr(err error, fallback string) tea.Cmd {
	if client.IsUnauthorized(err) {
		return nil
	}
	return notifyErr(err, fallback)
}
