package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/internal/session"
	"github.com/naveenspark/taskflow/pkg/client"
	"github.com/naveenspark/taskflow/pkg/domain"
)

// Profile form fields
const (
	profileFirstName = iota
	profileLastName
)

// profileSavedMsg reports PATCH /users/me followed by a session refresh.
type profileSavedMsg struct {
	s          session.Session
	err        error
	refreshErr error
}

type profileModel struct {
	client  *client.Client
	sess    *session.Manager
	user    *domain.User
	editing bool
	saving  bool
	form    form
}

func newProfileModel(c *client.Client, s *session.Manager) profileModel {
	return profileModel{client: c, sess: s}
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileSavedMsg:
		m.saving = false
		if msg.err != nil {
			return m, notifyAPIErr(msg.err, "Could not update profile")
		}
		m.editing = false
		s, refreshErr := msg.s, msg.refreshErr
		return m, tea.Batch(
			notifySuccess("Profile updated"),
			func() tea.Msg { return sessionMsg{event: evRefresh, s: s, err: refreshErr} },
		)

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		if m.editing {
			switch msg.String() {
			case "esc":
				m.editing = false
				return m, nil
			case "enter":
				return m.save()
			}
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, keys.Edit):
			if m.user == nil {
				return m, nil
			}
			m.editing = true
			m.form = newForm("Edit profile",
				fieldDef{label: "First name", value: m.user.FirstName, required: true},
				fieldDef{label: "Last name", value: m.user.LastName, required: true},
			)
			cmd := m.form.Focus()
			return m, cmd
		case key.Matches(msg, keys.Logout):
			sess := m.sess
			return m, func() tea.Msg {
				return sessionMsg{event: evLogout, s: sess.Logout(context.Background())}
			}
		}
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m profileModel) save() (profileModel, tea.Cmd) {
	if missing := m.form.Missing(); missing != "" {
		return m, notifyError(missing + " is required")
	}
	m.saving = true
	c, sess := m.client, m.sess
	req := domain.UpdateUserRequest{
		FirstName: m.form.Value(profileFirstName),
		LastName:  m.form.Value(profileLastName),
	}
	return m, func() tea.Msg {
		ctx := context.Background()
		if _, err := c.UpdateMe(ctx, req); err != nil {
			return profileSavedMsg{err: err}
		}
		s, err := sess.RefreshUser(ctx)
		return profileSavedMsg{s: s, refreshErr: err}
	}
}

func (m profileModel) View() string {
	var sb strings.Builder
	if m.editing {
		sb.WriteString("\n" + m.form.View())
		if m.saving {
			sb.WriteString("\n   " + dimStyle.Render("saving…") + "\n")
		}
		return sb.String()
	}

	sb.WriteString(" " + sectionHeaderStyle.Render("── PROFILE ──") + "\n\n")
	if m.user == nil {
		sb.WriteString("   " + dimStyle.Render("not signed in") + "\n")
		return sb.String()
	}
	u := m.user
	sb.WriteString("   " + avatarStyle.Render(u.Initials()) + "  " + selectedStyle.Render(u.FullName()) + "\n\n")
	sb.WriteString("   " + dimStyle.Render("First name ") + " " + normalStyle.Render(u.FirstName) + "\n")
	sb.WriteString("   " + dimStyle.Render("Last name  ") + " " + normalStyle.Render(u.LastName) + "\n")
	sb.WriteString("   " + dimStyle.Render("Email      ") + " " + normalStyle.Render(u.Email) +
		" " + metaStyle.Render("(cannot be changed)") + "\n")
	return sb.String()
}

func (m profileModel) helpKeys() string {
	if m.editing {
		return helpLine("tab", "next field", "enter", "save", "esc", "cancel")
	}
	return bindingHelp(keys.Edit) + "  " + bindingHelp(keys.Logout)
}
