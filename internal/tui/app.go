// Package tui is the interactive terminal front end of TaskFlow.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/taskflow/internal/browser"
	"github.com/naveenspark/taskflow/internal/logging"
	"github.com/naveenspark/taskflow/internal/session"
	"github.com/naveenspark/taskflow/pkg/client"
)

type view int

const (
	viewSplash view = iota
	viewLogin
	viewRegister
	viewProjects
	viewDetail
	viewProfile
)

var viewNames = map[view]string{
	viewSplash:   "splash",
	viewLogin:    "login",
	viewRegister: "register",
	viewProjects: "projects",
	viewDetail:   "detail",
	viewProfile:  "profile",
}

func (v view) String() string { return viewNames[v] }

// protected views require an authenticated session.
func (v view) protected() bool {
	return v == viewProjects || v == viewDetail || v == viewProfile
}

// UnauthorizedMsg reports that the API rejected the session token. Deliver
// it with Program.Send from the client's unauthorized handler.
type UnauthorizedMsg struct{}

type sessionEvent int

const (
	evBootstrap sessionEvent = iota
	evLogin
	evRegister
	evLogout
	evRefresh
)

// sessionMsg carries the session after a manager operation.
type sessionMsg struct {
	event sessionEvent
	s     session.Session
	err   error
}

type navigateMsg struct{ to view }

type openProjectMsg struct{ id int64 }

func navigate(to view) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

// Options wires the app to its collaborators.
type Options struct {
	Client  *client.Client
	Session *session.Manager
	WebURL  string
	Open    browser.Opener
	Copy    func(string) error
	Log     logging.Logger
	Version string
}

// App is the root Bubbletea model.
type App struct {
	client  *client.Client
	sess    *session.Manager
	webURL  string
	open    browser.Opener
	copy    func(string) error
	log     logging.Logger
	version string

	session  session.Session
	view     view
	spinner  spinner.Model
	login    loginModel
	register registerModel
	projects projectsModel
	detail   detailModel
	profile  profileModel
	note     notification
	noteSeq  int
	width    int
	height   int
}

// NewApp creates a new TUI application.
func NewApp(opts Options) App {
	if opts.Open == nil {
		opts.Open = browser.Open
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = accentStyle
	a := App{
		client:  opts.Client,
		sess:    opts.Session,
		webURL:  opts.WebURL,
		open:    opts.Open,
		copy:    opts.Copy,
		log:     opts.Log.With("component", "tui"),
		version: opts.Version,
		session: session.Initial(),
		view:    viewSplash,
		spinner: sp,
	}
	a.resetModels()
	return a
}

// resetModels drops everything loaded for the previous user.
func (a *App) resetModels() {
	a.login = newLoginModel(a.client, a.sess)
	a.register = newRegisterModel(a.client, a.sess)
	a.projects = newProjectsModel(a.client)
	a.detail = newDetailModel(a.client, 0, a.webURL, a.open, a.copy)
	a.profile = newProfileModel(a.client, a.sess)
	a.profile.user = a.session.User
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.bootstrap())
}

func (a App) bootstrap() tea.Cmd {
	sess := a.sess
	if sess == nil {
		return nil
	}
	return func() tea.Msg {
		return sessionMsg{event: evBootstrap, s: sess.Bootstrap(context.Background())}
	}
}

// guard returns the view actually shown when target is requested.
func (a App) guard(target view) view {
	authed := a.session.IsAuthenticated()
	switch {
	case a.session.Loading:
		return viewSplash
	case target.protected() && !authed:
		return viewLogin
	case !target.protected() && authed:
		return viewProjects
	case target == viewSplash:
		return viewLogin
	}
	return target
}

// show switches to target (after guarding) and starts the view's loads.
func (a App) show(target view) (App, tea.Cmd) {
	v := a.guard(target)
	if v == a.view {
		return a, nil
	}
	a.log.Debug(context.Background(), "view change", "from", a.view, "to", v, "requested", target)
	a.view = v
	switch v {
	case viewLogin:
		cmd := a.login.Focus()
		return a, cmd
	case viewRegister:
		cmd := a.register.Focus()
		return a, cmd
	case viewProjects:
		cmd := a.projects.Init()
		return a, cmd
	case viewDetail:
		cmd := a.detail.Init()
		return a, cmd
	case viewProfile:
		a.profile.user = a.session.User
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(1) + tabs(1) + blank(1) + note(1) + help(1)
		body := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-5, 1)}
		return a.broadcast(body)

	case spinner.TickMsg:
		if !a.session.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case notifyMsg:
		a.noteSeq++
		a.note = notification{id: a.noteSeq, level: msg.level, text: msg.text}
		return a, expireNote(a.noteSeq)

	case noteExpiredMsg:
		if msg.id == a.note.id {
			a.note = notification{}
		}
		return a, nil

	case UnauthorizedMsg:
		return a.expire()

	case sessionMsg:
		return a.applySession(msg)

	case navigateMsg:
		return a.show(msg.to)

	case openProjectMsg:
		a.detail = newDetailModel(a.client, msg.id, a.webURL, a.open, a.copy)
		a.detail, _ = a.detail.Update(tea.WindowSizeMsg{Width: a.width, Height: max(a.height-5, 1)})
		if a.view == viewDetail {
			cmd := a.detail.Init()
			return a, cmd
		}
		return a.show(viewDetail)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isTyping() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				return a.show(viewProjects)
			case "2":
				return a.show(viewProfile)
			}
		}
		return a.routeKey(msg)
	}

	return a.broadcast(msg)
}

// expire reacts to the API rejecting the token: the session resets and the
// login view is shown unless it already is.
func (a App) expire() (App, tea.Cmd) {
	ctx := context.Background()
	if a.sess != nil {
		a.session = a.sess.Expire(ctx)
	} else {
		a.session = a.session.Expired()
	}
	a.resetModels()
	if a.view == viewLogin {
		cmd := a.login.Focus()
		return a, cmd
	}
	a.log.Info(ctx, "session expired, showing login", "from", a.view)
	a, cmd := a.show(viewLogin)
	return a, tea.Batch(cmd, notifyError("Your session has expired, please sign in again"))
}

func (a App) applySession(msg sessionMsg) (App, tea.Cmd) {
	a.session = msg.s
	a.profile.user = msg.s.User

	var cmds []tea.Cmd
	target := a.view
	switch msg.event {
	case evBootstrap:
		target = viewProjects
	case evLogin, evRegister:
		if msg.err != nil {
			fallback := "Login failed"
			if msg.event == evRegister {
				fallback = "Registration failed"
			}
			cmds = append(cmds, notifyErr(msg.err, fallback))
			break
		}
		greeting := "Welcome back"
		if msg.event == evRegister {
			greeting = "Account created, welcome"
		}
		if u := msg.s.User; u != nil && u.FirstName != "" {
			greeting += ", " + u.FirstName
		}
		cmds = append(cmds, notifySuccess(greeting))
		target = viewProjects
	case evLogout:
		a.resetModels()
		cmds = append(cmds, notifySuccess("You have been logged out"))
		target = viewLogin
	case evRefresh:
		if msg.err != nil {
			cmds = append(cmds, notifyErr(msg.err, genericError))
		}
	}
	if !msg.s.IsAuthenticated() && msg.event != evLogout {
		a.projects = newProjectsModel(a.client)
	}

	a, cmd := a.show(target)
	cmds = append(cmds, cmd)

	// sub-models reset their pending state on session results
	a, cmd = a.broadcast(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// broadcast hands a non-key message to every sub-model. Each ignores
// messages it does not own.
func (a App) broadcast(msg tea.Msg) (App, tea.Cmd) {
	cmds := make([]tea.Cmd, 5)
	a.login, cmds[0] = a.login.Update(msg)
	a.register, cmds[1] = a.register.Update(msg)
	a.projects, cmds[2] = a.projects.Update(msg)
	a.detail, cmds[3] = a.detail.Update(msg)
	a.profile, cmds[4] = a.profile.Update(msg)
	return a, tea.Batch(cmds...)
}

func (a App) routeKey(msg tea.KeyMsg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.Update(msg)
	case viewDetail:
		a.detail, cmd = a.detail.Update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.Update(msg)
	}
	return a, cmd
}

// isTyping reports whether keys should go to a text field rather than
// trigger global shortcuts.
func (a App) isTyping() bool {
	switch a.view {
	case viewLogin, viewRegister:
		return true
	case viewProjects:
		return a.projects.state != stateNormal || a.projects.pager.active
	case viewDetail:
		return a.detail.state != stateNormal || a.detail.pager.active
	case viewProfile:
		return a.profile.editing
	}
	return false
}

func (a App) View() string {
	header := " " + titleStyle.Render("TaskFlow")
	if a.version != "" {
		header += " " + metaStyle.Render(a.version)
	}
	if u := a.session.User; u != nil && a.session.IsAuthenticated() {
		right := avatarStyle.Render(u.Initials()) + " " + dimStyle.Render(u.FullName())
		pad := a.width - lipgloss.Width(header) - lipgloss.Width(right) - 1
		if pad < 2 {
			pad = 2
		}
		header += strings.Repeat(" ", pad) + right
	}

	var tabs string
	if a.view.protected() {
		type tabEntry struct {
			key  string
			name string
			v    view
		}
		entries := []tabEntry{{"1", "Projects", viewProjects}, {"2", "Profile", viewProfile}}
		parts := make([]string, 0, len(entries))
		for _, t := range entries {
			active := t.v == a.view || (t.v == viewProjects && a.view == viewDetail)
			if active {
				parts = append(parts, accentStyle.Render(t.key)+" "+selectedStyle.Underline(true).Render(t.name))
			} else {
				parts = append(parts, metaStyle.Render(t.key)+" "+dimStyle.Render(t.name))
			}
		}
		tabs = " " + strings.Join(parts, "    ")
	}

	var body, help string
	switch a.view {
	case viewSplash:
		body = fmt.Sprintf("\n  %s %s\n", a.spinner.View(), dimStyle.Render("Loading your session…"))
		help = " " + helpLine("ctrl+c", "quit")
	case viewLogin:
		body = a.login.View()
		help = " " + a.login.helpKeys()
	case viewRegister:
		body = a.register.View()
		help = " " + a.register.helpKeys()
	case viewProjects:
		body = a.projects.View()
		help = " " + a.projects.helpKeys()
	case viewDetail:
		body = a.detail.View()
		help = " " + a.detail.helpKeys()
	case viewProfile:
		body = a.profile.View()
		help = " " + a.profile.helpKeys()
	}
	if a.view.protected() && !a.isTyping() {
		help = " " + helpLine("1-2", "tabs") + "  " + strings.TrimLeft(help, " ") + "  " + helpLine("q", "quit")
	}

	var footer string
	switch a.view {
	case viewProjects:
		footer = a.projects.footer()
	case viewDetail:
		footer = a.detail.footer()
	}

	// same chrome as in the WindowSizeMsg case
	chrome := 5
	avail := a.height - chrome
	if footer != "" {
		avail -= lineCount(footer) + 1
	}
	if a.height > 0 {
		body = truncateToHeight(body, max(avail, 1))
	}
	body = strings.TrimRight(body, "\n")
	if footer != "" {
		body += "\n\n" + strings.TrimRight(footer, "\n")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabs, body, a.note.View(), help)
}
