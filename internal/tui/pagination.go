package tui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/internal/paging"
)

// renderPager renders "‹ 1 2 3 ›" with the current page highlighted and
// disabled arrows dimmed. It renders nothing when the controls are hidden.
func renderPager(c paging.Controls) string {
	if c.Hidden {
		return ""
	}
	arrow := func(s string, disabled bool) string {
		if disabled {
			return metaStyle.Render(s)
		}
		return accentStyle.Render(s)
	}
	parts := []string{arrow("‹", c.PrevDisabled)}
	for _, p := range c.Pages {
		if p.Current {
			parts = append(parts, selectedStyle.Underline(true).Render(p.Label))
		} else {
			parts = append(parts, dimStyle.Render(p.Label))
		}
	}
	parts = append(parts, arrow("›", c.NextDisabled))
	return " " + strings.Join(parts, " ")
}

// pageKey applies prev/next keys to l. changed reports a new page.
func pageKey(l *paging.List, msg tea.KeyMsg) (handled, changed bool) {
	switch {
	case key.Matches(msg, keys.PrevPage):
		return true, l.Prev()
	case key.Matches(msg, keys.NextPg):
		return true, l.Next()
	}
	return false, false
}

// gotoPrompt reads a 1-indexed page number.
type gotoPrompt struct {
	active bool
	input  textinput.Model
}

func newGotoPrompt() gotoPrompt {
	ti := textinput.New()
	ti.Prompt = "go to page: "
	ti.CharLimit = 6
	ti.Cursor.SetMode(cursorMode)
	ti.Width = 8
	return gotoPrompt{input: ti}
}

func (g *gotoPrompt) Open() tea.Cmd {
	g.active = true
	g.input.SetValue("")
	return g.input.Focus()
}

func (g *gotoPrompt) Close() {
	g.active = false
	g.input.Blur()
}

// Update handles a key while the prompt is open. On enter it moves l and
// reports whether a refetch is needed; an out-of-range page yields a
// notification instead.
func (g gotoPrompt) Update(l *paging.List, msg tea.KeyMsg) (gotoPrompt, bool, tea.Cmd) {
	switch msg.String() {
	case "esc":
		g.Close()
		return g, false, nil
	case "enter":
		raw := strings.TrimSpace(g.input.Value())
		g.Close()
		k, err := strconv.Atoi(raw)
		if err != nil || k < 1 || k > max(l.TotalPages, 1) {
			return g, false, notifyError(fmt.Sprintf("Page must be between 1 and %d", max(l.TotalPages, 1)))
		}
		return g, l.GoTo(k - 1), nil
	}
	if msg.Type == tea.KeyRunes && strings.IndexFunc(string(msg.Runes), func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return g, false, nil
	}
	var cmd tea.Cmd
	g.input, cmd = g.input.Update(msg)
	return g, false, cmd
}

func (g gotoPrompt) View() string {
	if !g.active {
		return ""
	}
	return " " + g.input.View()
}
