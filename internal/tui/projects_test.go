package tui

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/pkg/domain"
)

func seedProjects(h *harness, n int) {
	for i := 1; i <= n; i++ {
		h.srv.AddProject("ada@example.com", fmt.Sprintf("Project %d", i), "")
	}
}

func TestProjectsCreateEmptyTitleSendsNothing(t *testing.T) {
	h := seeded(t)
	h.boot()

	h.key("a", "enter")

	if got := h.lastNote(); got != "Title is required" {
		t.Errorf("expected title validation, got %q", got)
	}
	if n := h.srv.Count(http.MethodPost, "/projects"); n != 0 {
		t.Errorf("expected no create request, got %d", n)
	}
	if h.app.projects.state != stateAdding {
		t.Error("form should stay open")
	}
}

func TestProjectsCreate(t *testing.T) {
	h := seeded(t)
	h.boot()
	h.srv.ResetRequests()

	h.key("a")
	h.typeText("Launch")
	h.key("tab")
	h.typeText("Rocket things")
	h.key("enter")

	if n := h.srv.Count(http.MethodPost, "/projects"); n != 1 {
		t.Fatalf("expected one create request, got %d", n)
	}
	if n := h.srv.Count(http.MethodGet, "/projects"); n != 1 {
		t.Errorf("expected the list to be refetched once, got %d", n)
	}
	if h.app.projects.state != stateNormal {
		t.Error("form should close after saving")
	}
	if len(h.app.projects.projects) != 1 || h.app.projects.projects[0].Description != "Rocket things" {
		t.Fatalf("unexpected projects %+v", h.app.projects.projects)
	}
	if got := h.lastNote(); got != "Project created" {
		t.Errorf("expected created note, got %q", got)
	}
}

func TestProjectsEdit(t *testing.T) {
	h := seeded(t)
	p := h.srv.AddProject("ada@example.com", "Draft", "")
	h.boot()

	h.key("e")
	h.typeText(" v2")
	h.key("enter")

	got, _ := h.srv.Project(p.ID)
	if got.Title != "Draft v2" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if h.app.projects.projects[0].Title != "Draft v2" {
		t.Error("list should show the new title")
	}
}

func TestProjectsDeleteConfirm(t *testing.T) {
	h := seeded(t)
	p := h.srv.AddProject("ada@example.com", "Doomed", "")
	h.boot()

	h.key("d")
	if !strings.Contains(h.app.View(), "Delete") {
		t.Error("expected a confirmation prompt")
	}
	h.key("n")
	if _, ok := h.srv.Project(p.ID); !ok {
		t.Fatal("'n' must not delete")
	}

	h.key("d", "y")
	if _, ok := h.srv.Project(p.ID); ok {
		t.Error("expected the project to be deleted")
	}
	if len(h.app.projects.projects) != 0 {
		t.Error("list should be empty after delete")
	}
	if !strings.Contains(h.app.View(), "no projects yet") {
		t.Error("expected the empty state")
	}
}

func TestProjectsPaging(t *testing.T) {
	h := seeded(t)
	seedProjects(h, 8)
	h.boot()

	if h.app.projects.list.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", h.app.projects.list.TotalPages)
	}
	if !strings.Contains(h.app.View(), "‹") {
		t.Error("expected pager controls")
	}

	h.key("]")
	req, _ := h.srv.Last(http.MethodGet, "/projects")
	if req.Query.Get("page") != "1" || req.Query.Get("size") != "6" {
		t.Errorf("unexpected query %v", req.Query)
	}
	if len(h.app.projects.projects) != 2 {
		t.Errorf("expected 2 projects on page 2, got %d", len(h.app.projects.projects))
	}

	// next on the last page does nothing
	h.srv.ResetRequests()
	h.key("]")
	if n := h.srv.Count(http.MethodGet, "/projects"); n != 0 {
		t.Errorf("expected no fetch past the last page, got %d", n)
	}
}

func TestProjectsPagerHiddenOnSinglePage(t *testing.T) {
	h := seeded(t)
	seedProjects(h, 3)
	h.boot()

	if strings.Contains(h.app.View(), "‹") {
		t.Error("pager should be hidden with one page")
	}
}

func TestProjectsDeleteLastItemOnLastPageClamps(t *testing.T) {
	h := seeded(t)
	seedProjects(h, 7)
	h.boot()
	h.key("]")
	if h.app.projects.list.Page != 1 || len(h.app.projects.projects) != 1 {
		t.Fatalf("expected one project on page 2, got page %d with %d", h.app.projects.list.Page, len(h.app.projects.projects))
	}

	h.key("d", "y")

	if h.app.projects.list.Page != 0 {
		t.Errorf("expected to land on the first page, got %d", h.app.projects.list.Page)
	}
	if h.app.projects.list.TotalPages != 1 {
		t.Errorf("expected 1 page, got %d", h.app.projects.list.TotalPages)
	}
	if len(h.app.projects.projects) != 6 {
		t.Errorf("expected 6 projects, got %d", len(h.app.projects.projects))
	}
}

func TestProjectsGoTo(t *testing.T) {
	h := seeded(t)
	seedProjects(h, 13)
	h.boot()

	h.key("g")
	h.typeText("3")
	h.key("enter")
	if h.app.projects.list.Page != 2 {
		t.Errorf("expected page index 2, got %d", h.app.projects.list.Page)
	}

	h.key("g")
	h.typeText("9")
	h.key("enter")
	if got := h.lastNote(); got != "Page must be between 1 and 3" {
		t.Errorf("expected range note, got %q", got)
	}
	if h.app.projects.list.Page != 2 {
		t.Error("an out of range page must not move the list")
	}
}

func TestProjectsOpenShowsDetail(t *testing.T) {
	h := seeded(t)
	p := h.srv.AddProject("ada@example.com", "Apollo", "Moon")
	h.boot()

	h.key("enter")

	if h.app.view != viewDetail {
		t.Fatalf("expected detail view, got %s", h.app.view)
	}
	if h.app.detail.project == nil || h.app.detail.project.ID != p.ID {
		t.Fatalf("expected project %d loaded, got %+v", p.ID, h.app.detail.project)
	}
	if !strings.Contains(h.app.View(), "Apollo") {
		t.Error("detail should show the project title")
	}
}

func TestProjectsStaleResponseIgnored(t *testing.T) {
	m := newProjectsModel(nil)
	old := m.list.Begin()
	current := m.list.Begin()

	stale := &domain.Page[domain.Project]{Content: []domain.Project{{ID: 1, Title: "stale"}}, TotalPages: 1}
	m, _ = m.Update(projectsLoadedMsg{ticket: old, page: stale})
	if len(m.projects) != 0 {
		t.Fatal("a superseded response must be dropped")
	}

	fresh := &domain.Page[domain.Project]{Content: []domain.Project{{ID: 2, Title: "fresh"}}, TotalPages: 1}
	m, _ = m.Update(projectsLoadedMsg{ticket: current, page: fresh})
	if len(m.projects) != 1 || m.projects[0].Title != "fresh" {
		t.Errorf("expected the current response, got %+v", m.projects)
	}
}

func TestProjectsCursorNavigation(t *testing.T) {
	m := newProjectsModel(nil)
	m.projects = []domain.Project{{ID: 1}, {ID: 2}, {ID: 3}}
	m.loaded = true

	for _, k := range []string{"j", "j", "j"} {
		m, _ = m.Update(keyMsg(k))
	}
	if m.cursor != 2 {
		t.Errorf("cursor should stop at the last item, got %d", m.cursor)
	}
	m, _ = m.Update(keyMsg("k"))
	if m.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", m.cursor)
	}
}

func TestProjectsLoadErrorKeepsList(t *testing.T) {
	m := newProjectsModel(nil)
	m.projects = []domain.Project{{ID: 1, Title: "kept"}}
	m.loaded = true
	tk := m.list.Begin()

	m, cmd := m.Update(projectsLoadedMsg{ticket: tk, err: fmt.Errorf("connection refused")})
	if len(m.projects) != 1 {
		t.Error("a failed load should keep what is shown")
	}
	if cmd == nil {
		t.Fatal("expected a notification")
	}
	if n, ok := cmd().(notifyMsg); !ok || n.text != "Could not load projects" {
		t.Errorf("unexpected message %#v", cmd())
	}
}

func TestProjectsNarrowTerminalKeepsPagerOnScreen(t *testing.T) {
	h := seeded(t)
	seedProjects(h, 8)
	h.send(tea.WindowSizeMsg{Width: 70, Height: 40})
	h.boot()

	if h.app.projects.columns() != 1 {
		t.Fatalf("expected a single column at width 70, got %d", h.app.projects.columns())
	}
	out := h.app.View()
	if n := strings.Count(out, "\n") + 1; n > 40 {
		t.Errorf("view is %d lines, taller than the terminal", n)
	}
	if !strings.Contains(out, "‹") {
		t.Errorf("pager cut off:\n%s", out)
	}

	// the last card on the page scrolls into view and stays above the prompt
	h.key("j", "j", "j", "j", "j", "d")
	last := h.app.projects.projects[5].Title
	out = h.app.View()
	if !strings.Contains(out, last) {
		t.Errorf("selected project %q not visible:\n%s", last, out)
	}
	if !strings.Contains(out, "and all its tasks?") {
		t.Errorf("delete confirmation cut off:\n%s", out)
	}
	if !strings.Contains(out, "‹") {
		t.Errorf("pager cut off while confirming:\n%s", out)
	}
}

func TestVisibleRows(t *testing.T) {
	card := "a\nb\nc"
	rows := []string{"r0\n" + card, "r1\n" + card, "r2\n" + card, "r3\n" + card}

	tests := []struct {
		name   string
		cur    int
		budget int
		want   []string
	}{
		{"everything fits", 0, 16, rows},
		{"no budget keeps all", 2, 0, rows},
		{"window at top", 0, 8, rows[0:2]},
		{"window follows cursor", 3, 8, rows[2:4]},
		{"cursor row kept when too tall", 1, 2, rows[1:2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibleRows(rows, tt.cur, tt.budget)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("visibleRows(cur=%d, budget=%d) = %q, want %q", tt.cur, tt.budget, got, tt.want)
			}
		})
	}
}
