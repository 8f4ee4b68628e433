package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/internal/apitest"
	"github.com/naveenspark/taskflow/internal/session"
	"github.com/naveenspark/taskflow/internal/tokenstore"
	"github.com/naveenspark/taskflow/pkg/client"
)

// cmdTimeout bounds a single command; anything slower is a hung test.
const cmdTimeout = 5 * time.Second

func TestMain(m *testing.M) {
	noteTTL = time.Millisecond
	cursorMode = cursor.CursorStatic
	os.Exit(m.Run())
}

// harness drives an App the way tea.Program would: every command is run and
// its message fed back until nothing is left. Messages posted by the
// client's unauthorized handler are delivered like Program.Send.
type harness struct {
	t       *testing.T
	app     App
	srv     *apitest.Server
	tokens  *tokenstore.MemoryStore
	msgs    []tea.Msg
	sent    chan tea.Msg
	opened  []string
	copied  []string
	openErr error
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		srv:    apitest.New(t),
		tokens: tokenstore.NewMemoryStore(token),
		sent:   make(chan tea.Msg, 16),
	}
	c := client.New(h.srv.BaseURL(), h.tokens,
		client.WithUnauthorizedHandler(func() { h.sent <- UnauthorizedMsg{} }))
	h.app = NewApp(Options{
		Client:  c,
		Session: session.NewManager(h.tokens, c, nil),
		WebURL:  "http://localhost:5173",
		Open: func(u string) error {
			h.opened = append(h.opened, u)
			return h.openErr
		},
		Copy: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
		Version: "test",
	})
	m, _ := h.app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.app = m.(App)
	return h
}

// seeded returns a harness with one user, logged in through bootstrap.
func seeded(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, "")
	h.srv.AddUser("Ada", "Lovelace", "ada@example.com", "secret")
	tok := h.srv.IssueToken("ada@example.com")
	if err := h.tokens.Set(tok); err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *harness) boot() {
	h.t.Helper()
	h.run(h.app.bootstrap())
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	m, cmd := h.app.Update(msg)
	h.app = m.(App)
	h.run(cmd)
}

func (h *harness) key(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

// typeText sends s one rune at a time.
func (h *harness) typeText(s string) {
	h.t.Helper()
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := h.exec(c)
		queue = append(queue, h.drainSent()...)
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, cursor.BlinkMsg, noteExpiredMsg, tea.QuitMsg:
			h.msgs = append(h.msgs, msg)
		default:
			queue = append(queue, h.deliver(msg)...)
		}
	}
}

// drainSent delivers messages posted while the last command ran.
func (h *harness) drainSent() []tea.Cmd {
	var cmds []tea.Cmd
	for {
		select {
		case m := <-h.sent:
			cmds = append(cmds, h.deliver(m)...)
		default:
			return cmds
		}
	}
}

func (h *harness) deliver(msg tea.Msg) []tea.Cmd {
	h.msgs = append(h.msgs, msg)
	m, next := h.app.Update(msg)
	h.app = m.(App)
	return []tea.Cmd{next}
}

func (h *harness) exec(c tea.Cmd) tea.Msg {
	h.t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- c() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(cmdTimeout):
		h.t.Fatal("command did not return")
		return nil
	}
}

// notes returns the text of every notification shown so far.
func (h *harness) notes() []string {
	var out []string
	for _, m := range h.msgs {
		if n, ok := m.(notifyMsg); ok {
			out = append(out, n.text)
		}
	}
	return out
}

func (h *harness) lastNote() string {
	notes := h.notes()
	if len(notes) == 0 {
		return ""
	}
	return notes[len(notes)-1]
}

func (h *harness) hasNote(substr string) bool {
	for _, n := range h.notes() {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

func (h *harness) quit() bool {
	for _, m := range h.msgs {
		if _, ok := m.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}
