package tui

import (
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestAppStartsOnSplash(t *testing.T) {
	h := newHarness(t, "")
	if h.app.view != viewSplash {
		t.Fatalf("expected splash view, got %s", h.app.view)
	}
	if !strings.Contains(h.app.View(), "Loading your session") {
		t.Errorf("splash should say it is loading, got:\n%s", h.app.View())
	}
}

func TestAppBootstrapWithoutTokenShowsLogin(t *testing.T) {
	h := newHarness(t, "")
	h.boot()

	if h.app.view != viewLogin {
		t.Fatalf("expected login view, got %s", h.app.view)
	}
	if n := h.srv.Count(http.MethodGet, "/users/me"); n != 0 {
		t.Errorf("expected no /users/me call without a token, got %d", n)
	}
}

func TestAppBootstrapWithTokenShowsProjects(t *testing.T) {
	h := seeded(t)
	h.srv.AddProject("ada@example.com", "Apollo", "")
	h.boot()

	if h.app.view != viewProjects {
		t.Fatalf("expected projects view, got %s", h.app.view)
	}
	if !h.app.session.IsAuthenticated() {
		t.Fatal("expected an authenticated session")
	}
	if n := h.srv.Count(http.MethodGet, "/users/me"); n != 1 {
		t.Errorf("expected exactly one /users/me call, got %d", n)
	}
	if len(h.app.projects.projects) != 1 {
		t.Fatalf("expected 1 project loaded, got %d", len(h.app.projects.projects))
	}
	if !strings.Contains(h.app.View(), "Ada Lovelace") {
		t.Error("header should show the user's name")
	}
}

func TestAppBootstrapRejectedTokenShowsLogin(t *testing.T) {
	h := newHarness(t, "stale-token")
	h.boot()

	if h.app.view != viewLogin {
		t.Fatalf("expected login view, got %s", h.app.view)
	}
	if tok, _ := h.tokens.Get(); tok != "" {
		t.Errorf("expected the rejected token to be cleared, got %q", tok)
	}
	if h.app.session.IsAuthenticated() {
		t.Error("session should not be authenticated")
	}
}

func TestAppLoginFetchesUserOnceAndShowsProjects(t *testing.T) {
	h := newHarness(t, "")
	h.srv.AddUser("Ada", "Lovelace", "ada@example.com", "secret")
	h.boot()

	h.typeText("ada@example.com")
	h.key("enter") // moves to the password field
	h.typeText("secret")
	h.key("enter")

	if h.app.view != viewProjects {
		t.Fatalf("expected projects view after login, got %s (notes %v)", h.app.view, h.notes())
	}
	if n := h.srv.Count(http.MethodPost, "/auth/login"); n != 1 {
		t.Errorf("expected one login call, got %d", n)
	}
	if n := h.srv.Count(http.MethodGet, "/users/me"); n != 1 {
		t.Errorf("expected exactly one /users/me call, got %d", n)
	}
	if tok, _ := h.tokens.Get(); tok == "" {
		t.Error("expected the token to be persisted")
	}
	if !h.hasNote("Welcome back, Ada") {
		t.Errorf("expected a welcome notification, got %v", h.notes())
	}
	if h.app.login.form.Raw(loginPassword) != "" {
		t.Error("password should be cleared after login")
	}
}

func TestAppLoginEmptyFieldSendsNothing(t *testing.T) {
	h := newHarness(t, "")
	h.boot()

	h.key("enter")
	if got := h.lastNote(); got != "Email is required" {
		t.Errorf("expected email validation note, got %q", got)
	}

	h.typeText("ada@example.com")
	h.key("tab", "enter")
	if got := h.lastNote(); got != "Password is required" {
		t.Errorf("expected password validation note, got %q", got)
	}
	if n := h.srv.Count(http.MethodPost, "/auth/login"); n != 0 {
		t.Errorf("expected no login request, got %d", n)
	}
}

func TestAppLoginWrongPassword(t *testing.T) {
	h := newHarness(t, "")
	h.srv.AddUser("Ada", "Lovelace", "ada@example.com", "secret")
	h.boot()

	h.typeText("ada@example.com")
	h.key("tab")
	h.typeText("nope")
	h.key("enter")

	if h.app.view != viewLogin {
		t.Fatalf("expected to stay on login, got %s", h.app.view)
	}
	if got := h.lastNote(); got != "Invalid email or password" {
		t.Errorf("expected the server's message, got %q", got)
	}
	if h.app.login.submitting {
		t.Error("login should not be stuck submitting")
	}
	for _, m := range h.msgs {
		if _, ok := m.(UnauthorizedMsg); ok {
			t.Error("a failed login must not expire the session")
		}
	}
}

func TestAppRegister(t *testing.T) {
	h := newHarness(t, "")
	h.boot()

	h.key("ctrl+r")
	if h.app.view != viewRegister {
		t.Fatalf("expected register view, got %s", h.app.view)
	}
	h.typeText("Grace")
	h.key("enter")
	h.typeText("Hopper")
	h.key("enter")
	h.typeText("grace@example.com")
	h.key("enter")
	h.typeText("cobol")
	h.key("enter")

	if h.app.view != viewProjects {
		t.Fatalf("expected projects view after register, got %s (notes %v)", h.app.view, h.notes())
	}
	if !h.hasNote("Account created") {
		t.Errorf("expected account created note, got %v", h.notes())
	}
	if h.app.session.User == nil || h.app.session.User.FirstName != "Grace" {
		t.Errorf("unexpected user %+v", h.app.session.User)
	}
}

func TestAppRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t, "")
	h.srv.AddUser("Ada", "Lovelace", "ada@example.com", "secret")
	h.boot()

	h.key("ctrl+r")
	for _, v := range []string{"Ada", "Again", "ada@example.com", "pw"} {
		h.typeText(v)
		h.key("enter")
	}
	if h.app.view != viewRegister {
		t.Fatalf("expected to stay on register, got %s", h.app.view)
	}
	if got := h.lastNote(); got != "Email is already in use" {
		t.Errorf("expected conflict message, got %q", got)
	}

	h.key("esc")
	if h.app.view != viewLogin {
		t.Errorf("esc should go back to login, got %s", h.app.view)
	}
}

func TestAppGuards(t *testing.T) {
	t.Run("anonymous cannot reach protected views", func(t *testing.T) {
		h := newHarness(t, "")
		h.boot()
		for _, v := range []view{viewProjects, viewDetail, viewProfile} {
			h.send(navigateMsg{to: v})
			if h.app.view != viewLogin {
				t.Errorf("navigate to %s: expected login, got %s", v, h.app.view)
			}
		}
	})

	t.Run("authenticated skips login and register", func(t *testing.T) {
		h := seeded(t)
		h.boot()
		for _, v := range []view{viewLogin, viewRegister, viewSplash} {
			h.send(navigateMsg{to: v})
			if h.app.view != viewProjects {
				t.Errorf("navigate to %s: expected projects, got %s", v, h.app.view)
			}
		}
	})

	t.Run("loading shows splash", func(t *testing.T) {
		a := NewApp(Options{})
		a, _ = a.show(viewProfile)
		if a.view != viewSplash {
			t.Errorf("expected splash while loading, got %s", a.view)
		}
	})
}

func TestAppTabSwitching(t *testing.T) {
	h := seeded(t)
	h.boot()

	h.key("2")
	if h.app.view != viewProfile {
		t.Fatalf("expected profile after '2', got %s", h.app.view)
	}
	if !strings.Contains(h.app.View(), "ada@example.com") {
		t.Error("profile should show the email")
	}
	h.key("1")
	if h.app.view != viewProjects {
		t.Fatalf("expected projects after '1', got %s", h.app.view)
	}
}

func TestAppUnauthorizedSwitchesToLogin(t *testing.T) {
	h := seeded(t)
	h.boot()
	h.srv.RevokeTokens()

	h.key("r")

	if h.app.view != viewLogin {
		t.Fatalf("expected login after 401, got %s", h.app.view)
	}
	if tok, _ := h.tokens.Get(); tok != "" {
		t.Errorf("expected token cleared, got %q", tok)
	}
	if !h.hasNote("session has expired") {
		t.Errorf("expected an expiry note, got %v", h.notes())
	}
	if h.hasNote("Could not load projects") {
		t.Error("the failed load should not add its own error")
	}
	if h.app.session.User != nil {
		t.Error("user should be dropped")
	}
}

func TestAppUnauthorizedOnLoginStaysQuiet(t *testing.T) {
	h := newHarness(t, "")
	h.boot()
	before := len(h.notes())

	h.send(UnauthorizedMsg{})

	if h.app.view != viewLogin {
		t.Fatalf("expected login, got %s", h.app.view)
	}
	if len(h.notes()) != before {
		t.Errorf("expected no new notification, got %v", h.notes()[before:])
	}
}

func TestAppLogout(t *testing.T) {
	h := seeded(t)
	h.boot()

	h.key("2", "x")

	if h.app.view != viewLogin {
		t.Fatalf("expected login after logout, got %s", h.app.view)
	}
	if tok, _ := h.tokens.Get(); tok != "" {
		t.Errorf("expected token cleared, got %q", tok)
	}
	if len(h.app.projects.projects) != 0 {
		t.Error("projects of the previous user should be dropped")
	}
	if !h.hasNote("logged out") {
		t.Errorf("expected logout note, got %v", h.notes())
	}
}

func TestAppQuit(t *testing.T) {
	t.Run("q quits outside text fields", func(t *testing.T) {
		h := seeded(t)
		h.boot()
		h.key("q")
		if !h.quit() {
			t.Error("expected quit on 'q'")
		}
	})

	t.Run("q is typed on login", func(t *testing.T) {
		h := newHarness(t, "")
		h.boot()
		h.key("q")
		if h.quit() {
			t.Error("'q' should be typed into the email field")
		}
		if got := h.app.login.form.Raw(loginEmail); got != "q" {
			t.Errorf("expected email field to hold 'q', got %q", got)
		}
	})

	t.Run("ctrl+c always quits", func(t *testing.T) {
		h := newHarness(t, "")
		h.boot()
		_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestAppNotificationExpires(t *testing.T) {
	a := NewApp(Options{})
	m, _ := a.Update(notifyMsg{level: noteError, text: "boom"})
	a = m.(App)
	if !strings.Contains(a.View(), "boom") {
		t.Fatal("expected the notification in the view")
	}

	// a stale expiry leaves the newer note alone
	m, _ = a.Update(notifyMsg{level: noteSuccess, text: "saved"})
	a = m.(App)
	m, _ = a.Update(noteExpiredMsg{id: 1})
	a = m.(App)
	if !strings.Contains(a.View(), "saved") {
		t.Error("stale expiry should not clear the newer note")
	}

	m, _ = a.Update(noteExpiredMsg{id: 2})
	a = m.(App)
	if strings.Contains(a.View(), "saved") {
		t.Error("expected the note to be cleared")
	}
}
