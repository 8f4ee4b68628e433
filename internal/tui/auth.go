package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/internal/session"
	"github.com/naveenspark/taskflow/pkg/client"
	"github.com/naveenspark/taskflow/pkg/domain"
)

// Login form fields
const (
	loginEmail = iota
	loginPassword
)

type loginModel struct {
	client     *client.Client
	sess       *session.Manager
	form       form
	submitting bool
}

func newLoginModel(c *client.Client, s *session.Manager) loginModel {
	return loginModel{
		client: c,
		sess:   s,
		form: newForm("Sign in",
			fieldDef{label: "Email", placeholder: "you@example.com", required: true},
			fieldDef{label: "Password", required: true, password: true},
		),
	}
}

func (m *loginModel) Focus() tea.Cmd { return m.form.Focus() }

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		if msg.event != evLogin {
			return m, nil
		}
		m.submitting = false
		if msg.err == nil {
			// clear the password so it does not linger after logout
			fresh := newLoginModel(m.client, m.sess)
			fresh.form.fields[loginEmail].input.SetValue(m.form.Value(loginEmail))
			m = fresh
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.form.focus < loginPassword && m.form.Value(m.form.focus) != "" {
				cmd := m.form.focusField(m.form.focus + 1)
				return m, cmd
			}
			return m.submit()
		case "ctrl+r":
			return m, navigate(viewRegister)
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if missing := m.form.Missing(); missing != "" {
		return m, notifyError(missing + " is required")
	}
	m.submitting = true
	c, sess := m.client, m.sess
	req := domain.LoginRequest{Email: m.form.Value(loginEmail), Password: m.form.Raw(loginPassword)}
	return m, func() tea.Msg {
		return authenticate(evLogin, sess, func(ctx context.Context) (*domain.AuthResponse, error) {
			return c.Login(ctx, req)
		})
	}
}

// authenticate runs an auth call and, on success, hands the token to the
// session manager, which fetches the user before reporting back.
func authenticate(ev sessionEvent, sess *session.Manager, call func(context.Context) (*domain.AuthResponse, error)) sessionMsg {
	ctx := context.Background()
	resp, err := call(ctx)
	if err != nil {
		return sessionMsg{event: ev, s: sess.Current(), err: err}
	}
	if resp.Token == "" {
		return sessionMsg{event: ev, s: sess.Current(), err: fmt.Errorf("server returned no token")}
	}
	s, err := sess.Login(ctx, resp.Token)
	return sessionMsg{event: ev, s: s, err: err}
}

func (m loginModel) View() string {
	s := "\n" + m.form.View()
	if m.submitting {
		s += "\n   " + dimStyle.Render("signing in…") + "\n"
	}
	return s
}

func (m loginModel) helpKeys() string {
	return helpLine("tab", "next field", "enter", "sign in", "ctrl+r", "create account", "ctrl+c", "quit")
}

// Register form fields
const (
	regFirstName = iota
	regLastName
	regEmail
	regPassword
)

type registerModel struct {
	client     *client.Client
	sess       *session.Manager
	form       form
	submitting bool
}

func newRegisterModel(c *client.Client, s *session.Manager) registerModel {
	return registerModel{
		client: c,
		sess:   s,
		form: newForm("Create account",
			fieldDef{label: "First name", required: true},
			fieldDef{label: "Last name", required: true},
			fieldDef{label: "Email", placeholder: "you@example.com", required: true},
			fieldDef{label: "Password", required: true, password: true},
		),
	}
}

func (m *registerModel) Focus() tea.Cmd { return m.form.Focus() }

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		if msg.event != evRegister {
			return m, nil
		}
		m.submitting = false
		if msg.err == nil {
			m = newRegisterModel(m.client, m.sess)
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.form.focus < regPassword && m.form.Value(m.form.focus) != "" {
				cmd := m.form.focusField(m.form.focus + 1)
				return m, cmd
			}
			return m.submit()
		case "esc":
			return m, navigate(viewLogin)
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	if missing := m.form.Missing(); missing != "" {
		return m, notifyError(missing + " is required")
	}
	m.submitting = true
	c, sess := m.client, m.sess
	req := domain.RegisterRequest{
		FirstName: m.form.Value(regFirstName),
		LastName:  m.form.Value(regLastName),
		Email:     m.form.Value(regEmail),
		Password:  m.form.Raw(regPassword),
	}
	return m, func() tea.Msg {
		return authenticate(evRegister, sess, func(ctx context.Context) (*domain.AuthResponse, error) {
			return c.Register(ctx, req)
		})
	}
}

func (m registerModel) View() string {
	s := "\n" + m.form.View()
	if m.submitting {
		s += "\n   " + dimStyle.Render("creating account…") + "\n"
	}
	return s
}

func (m registerModel) helpKeys() string {
	return helpLine("tab", "next field", "enter", "create", "esc", "back to sign in")
}
