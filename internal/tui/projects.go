package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/taskflow/internal/paging"
	"github.com/naveenspark/taskflow/pkg/client"
	"github.com/naveenspark/taskflow/pkg/domain"
)

// formState is the CRUD mode shared by the list views.
type formState int

const (
	stateNormal formState = iota
	stateAdding
	stateEditing
	stateDeleting
)

// Project form fields
const (
	projectTitle = iota
	projectDescription
)

type projectsLoadedMsg struct {
	ticket paging.Ticket
	page   *domain.Page[domain.Project]
	err    error
}

type projectSavedMsg struct {
	created bool
	err     error
}

type projectDeletedMsg struct{ err error }

type projectsModel struct {
	client   *client.Client
	list     paging.List
	projects []domain.Project
	cursor   int
	state    formState
	form     form
	editID   int64
	pager    gotoPrompt
	loading  bool
	loaded   bool
	width    int
	height   int
}

func newProjectsModel(c *client.Client) projectsModel {
	return projectsModel{
		client: c,
		list:   paging.New(paging.ProjectPageSize),
		pager:  newGotoPrompt(),
	}
}

// Init fetches the current page.
func (m *projectsModel) Init() tea.Cmd { return m.fetch() }

func (m *projectsModel) fetch() tea.Cmd {
	t := m.list.Begin()
	m.loading = true
	c, size := m.client, m.list.Size
	return func() tea.Msg {
		page, err := c.ListProjects(context.Background(), t.Key.Page, size)
		return projectsLoadedMsg{ticket: t, page: page, err: err}
	}
}

func (m projectsModel) selected() (domain.Project, bool) {
	if m.cursor < 0 || m.cursor >= len(m.projects) {
		return domain.Project{}, false
	}
	return m.projects[m.cursor], true
}

func (m projectsModel) Update(msg tea.Msg) (projectsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		if !m.list.Accept(msg.ticket) {
			return m, nil
		}
		if msg.err != nil {
			m.loading = false
			return m, notifyAPIErr(msg.err, "Could not load projects")
		}
		_, refetch := m.list.Apply(msg.ticket, msg.page.TotalPages, len(msg.page.Content))
		if refetch {
			cmd := m.fetch()
			return m, cmd
		}
		m.loading = false
		m.loaded = true
		m.projects = msg.page.Content
		m.cursor = clampCursor(m.cursor, len(m.projects))
		return m, nil

	case projectSavedMsg:
		if msg.err != nil {
			// keep the form open so the input can be corrected
			return m, notifyAPIErr(msg.err, "Could not save project")
		}
		m.state = stateNormal
		text := "Project updated"
		if msg.created {
			text = "Project created"
		}
		cmd := tea.Batch(notifySuccess(text), m.fetch())
		return m, cmd

	case projectDeletedMsg:
		m.state = stateNormal
		if msg.err != nil {
			return m, notifyAPIErr(msg.err, "Could not delete project")
		}
		cmd := tea.Batch(notifySuccess("Project deleted"), m.fetch())
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// cursor blink and other input messages
	var cmd tea.Cmd
	switch {
	case m.state == stateAdding || m.state == stateEditing:
		m.form, cmd = m.form.Update(msg)
	case m.pager.active:
		m.pager.input, cmd = m.pager.input.Update(msg)
	}
	return m, cmd
}

func (m projectsModel) handleKey(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	if m.pager.active {
		var changed bool
		var cmd tea.Cmd
		m.pager, changed, cmd = m.pager.Update(&m.list, msg)
		if changed {
			cmd := m.fetch()
			return m, cmd
		}
		return m, cmd
	}

	switch m.state {
	case stateAdding, stateEditing:
		switch msg.String() {
		case "esc":
			m.state = stateNormal
			return m, nil
		case "enter":
			return m.save()
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case stateDeleting:
		switch {
		case key.Matches(msg, keys.Confirm):
			p, ok := m.selected()
			if !ok {
				m.state = stateNormal
				return m, nil
			}
			c := m.client
			return m, func() tea.Msg {
				return projectDeletedMsg{err: c.DeleteProject(context.Background(), p.ID)}
			}
		case key.Matches(msg, keys.Cancel):
			m.state = stateNormal
		}
		return m, nil
	}

	if handled, changed := pageKey(&m.list, msg); handled {
		if changed {
			m.cursor = 0
			cmd := m.fetch()
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.projects)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Open):
		if p, ok := m.selected(); ok {
			id := p.ID
			return m, func() tea.Msg { return openProjectMsg{id: id} }
		}
	case key.Matches(msg, keys.Add):
		m.state = stateAdding
		m.form = newProjectForm("New project", domain.Project{})
		cmd := m.form.Focus()
		return m, cmd
	case key.Matches(msg, keys.Edit):
		if p, ok := m.selected(); ok {
			m.state = stateEditing
			m.editID = p.ID
			m.form = newProjectForm("Edit project", p)
			cmd := m.form.Focus()
			return m, cmd
		}
	case key.Matches(msg, keys.Del):
		if _, ok := m.selected(); ok {
			m.state = stateDeleting
		}
	case key.Matches(msg, keys.GoTo):
		cmd := m.pager.Open()
		return m, cmd
	case key.Matches(msg, keys.Reload):
		cmd := m.fetch()
		return m, cmd
	}
	return m, nil
}

func newProjectForm(title string, p domain.Project) form {
	return newForm(title,
		fieldDef{label: "Title", placeholder: "Project title", value: p.Title, required: true},
		fieldDef{label: "Description", placeholder: "optional", value: p.Description},
	)
}

func (m projectsModel) save() (projectsModel, tea.Cmd) {
	if missing := m.form.Missing(); missing != "" {
		return m, notifyError(missing + " is required")
	}
	req := domain.ProjectRequest{Title: m.form.Value(projectTitle), Description: m.form.Value(projectDescription)}
	c := m.client
	if m.state == stateAdding {
		return m, func() tea.Msg {
			_, err := c.CreateProject(context.Background(), req)
			return projectSavedMsg{created: true, err: err}
		}
	}
	id := m.editID
	return m, func() tea.Msg {
		_, err := c.UpdateProject(context.Background(), id, req)
		return projectSavedMsg{err: err}
	}
}

// columns picks how many project cards fit side by side.
func (m projectsModel) columns() int {
	switch {
	case m.width >= 120:
		return 3
	case m.width >= 80:
		return 2
	default:
		return 1
	}
}

func (m projectsModel) View() string {
	var sb strings.Builder

	if m.state == stateAdding || m.state == stateEditing {
		sb.WriteString("\n" + m.form.View())
		return sb.String()
	}

	header := "── PROJECTS ──"
	if m.list.TotalPages > 1 {
		header = fmt.Sprintf("── PROJECTS · page %d of %d ──", m.list.Page+1, m.list.TotalPages)
	}
	sb.WriteString(" " + sectionHeaderStyle.Render(header) + "\n\n")

	if !m.loaded {
		sb.WriteString("   " + dimStyle.Render("loading projects…") + "\n")
		return sb.String()
	}
	if len(m.projects) == 0 {
		sb.WriteString("   " + dimStyle.Render("no projects yet · press a to create one") + "\n")
		return sb.String()
	}

	cols := m.columns()
	cardWidth := 36
	if m.width > 0 {
		cardWidth = max((m.width-2)/cols-4, 24)
	}
	var rows []string
	for start := 0; start < len(m.projects); start += cols {
		end := min(start+cols, len(m.projects))
		cards := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cards = append(cards, m.renderCard(m.projects[i], i == m.cursor, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	// header(2) plus the footer and the blank line above it
	budget := m.height - 2
	if f := m.footer(); f != "" {
		budget -= lineCount(f) + 1
	}
	if m.height > 0 {
		rows = visibleRows(rows, m.cursor/cols, max(budget, 1))
	}
	sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n")
	return sb.String()
}

// footer is rendered by the app below the body, outside the part that is
// cut to the terminal height.
func (m projectsModel) footer() string {
	if !m.loaded || m.state == stateAdding || m.state == stateEditing {
		return ""
	}
	var sb strings.Builder
	if pager := renderPager(m.list.Controls()); pager != "" {
		sb.WriteString(pager + "\n")
	}
	if m.pager.active {
		sb.WriteString(m.pager.View() + "\n")
	}
	if m.state == stateDeleting {
		if p, ok := m.selected(); ok {
			sb.WriteString(" " + rejectStyle.Render(fmt.Sprintf("Delete %q and all its tasks?", truncStr(p.Title, 40))) +
				"  " + helpLine("y", "yes", "n", "no") + "\n")
		}
	}
	return sb.String()
}

// visibleRows returns the rows around cur that fit in budget lines. The
// cursor row is always kept. A budget <= 0 keeps every row.
func visibleRows(rows []string, cur, budget int) []string {
	if budget <= 0 || len(rows) == 0 {
		return rows
	}
	cur = clampCursor(cur, len(rows))
	lo, hi := cur, cur+1
	used := lipgloss.Height(rows[cur])
	for {
		grew := false
		if hi < len(rows) && used+lipgloss.Height(rows[hi]) <= budget {
			used += lipgloss.Height(rows[hi])
			hi++
			grew = true
		}
		if lo > 0 && used+lipgloss.Height(rows[lo-1]) <= budget {
			used += lipgloss.Height(rows[lo-1])
			lo--
			grew = true
		}
		if !grew {
			return rows[lo:hi]
		}
	}
}

func (m projectsModel) renderCard(p domain.Project, selected bool, width int) string {
	style := cardStyle
	titleSt := normalStyle
	if selected {
		style = cardSelectedStyle
		titleSt = selectedStyle
	}
	inner := width - 2
	desc := oneLine(p.Description)
	if desc == "" {
		desc = "no description"
	}
	lines := []string{
		titleSt.Render(truncStr(oneLine(p.Title), inner)),
		dimStyle.Render(truncStr(desc, inner)),
		progressBar(p.ProgressPercentage, max(inner-6, 4)),
		metaStyle.Render(fmt.Sprintf("%d/%d tasks done", p.CompletedTasks, p.TotalTasks)) +
			"  " + metaStyle.Render(formatCreated(p.CreatedAt.Time)),
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m projectsModel) helpKeys() string {
	switch {
	case m.state == stateAdding || m.state == stateEditing:
		return helpLine("tab", "next field", "enter", "save", "esc", "cancel")
	case m.state == stateDeleting:
		return helpLine("y", "confirm", "n", "cancel")
	case m.pager.active:
		return helpLine("enter", "go", "esc", "cancel")
	}
	parts := []string{
		bindingHelp(keys.Up), bindingHelp(keys.Open), bindingHelp(keys.Add),
		bindingHelp(keys.Edit), bindingHelp(keys.Del),
	}
	if !m.list.Controls().Hidden {
		parts = append(parts, bindingHelp(keys.PrevPage), bindingHelp(keys.GoTo))
	}
	parts = append(parts, bindingHelp(keys.Reload))
	return strings.Join(parts, "  ")
}
