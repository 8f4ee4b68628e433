package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/taskflow/internal/browser"
	"github.com/naveenspark/taskflow/internal/paging"
	"github.com/naveenspark/taskflow/pkg/client"
	"github.com/naveenspark/taskflow/pkg/domain"
)

// Task form fields. The edit form has no due date.
const (
	taskTitle = iota
	taskDescription
	taskDueDate
)

type projectLoadedMsg struct {
	id      int64
	seq     int
	project *domain.Project
	err     error
}

type tasksLoadedMsg struct {
	ticket paging.Ticket
	page   *domain.Page[domain.Task]
	err    error
}

// taskSavedMsg and taskDeletedMsg carry the project they belong to, so a
// late result cannot touch the form of a project opened since.
type taskSavedMsg struct {
	projectID int64
	text      string
	err       error
}

type taskDeletedMsg struct {
	projectID int64
	err       error
}

type browserOpenedMsg struct{ err error }

type copiedMsg struct{ err error }

type detailModel struct {
	client *client.Client
	webURL string
	open   browser.Opener
	copy   func(string) error
	now    func() time.Time

	projectID  int64
	project    *domain.Project
	projectSeq int

	list     paging.List
	tasks    []domain.Task
	cursor   int
	state    formState
	form     form
	editTask domain.Task
	pager    gotoPrompt
	loading  bool
	loaded   bool
	width    int
	height   int
}

func newDetailModel(c *client.Client, projectID int64, webURL string, open browser.Opener, copyFn func(string) error) detailModel {
	return detailModel{
		client:    c,
		webURL:    webURL,
		open:      open,
		copy:      copyFn,
		now:       time.Now,
		projectID: projectID,
		list:      paging.NewChildren(projectID, paging.TaskPageSize),
		pager:     newGotoPrompt(),
	}
}

// Init loads the project header and the first page of tasks.
func (m *detailModel) Init() tea.Cmd {
	if m.projectID == 0 {
		return nil
	}
	return tea.Batch(m.fetchProject(), m.fetchTasks())
}

func (m *detailModel) fetchProject() tea.Cmd {
	m.projectSeq++
	seq, id, c := m.projectSeq, m.projectID, m.client
	return func() tea.Msg {
		p, err := c.GetProject(context.Background(), id)
		return projectLoadedMsg{id: id, seq: seq, project: p, err: err}
	}
}

func (m *detailModel) fetchTasks() tea.Cmd {
	t := m.list.Begin()
	m.loading = true
	c, size := m.client, m.list.Size
	return func() tea.Msg {
		page, err := c.ListTasks(context.Background(), t.Key.Parent, client.TaskQuery{
			Page:      t.Key.Page,
			Size:      size,
			Status:    t.Key.Filter,
			SortTitle: t.Key.SortTitle,
		})
		return tasksLoadedMsg{ticket: t, page: page, err: err}
	}
}

// refresh reloads both the task page and the project aggregates after a
// task mutation.
func (m *detailModel) refresh() tea.Cmd {
	return tea.Batch(m.fetchTasks(), m.fetchProject())
}

func (m detailModel) selected() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return domain.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectLoadedMsg:
		if msg.id != m.projectID || msg.seq != m.projectSeq {
			return m, nil
		}
		if msg.err != nil {
			return m, tea.Batch(notifyAPIErr(msg.err, "Could not load project"), navigate(viewProjects))
		}
		m.project = msg.project
		return m, nil

	case tasksLoadedMsg:
		if !m.list.Accept(msg.ticket) {
			return m, nil
		}
		if msg.err != nil {
			m.loading = false
			return m, notifyAPIErr(msg.err, "Could not load tasks")
		}
		_, refetch := m.list.Apply(msg.ticket, msg.page.TotalPages, len(msg.page.Content))
		if refetch {
			cmd := m.fetchTasks()
			return m, cmd
		}
		m.loading = false
		m.loaded = true
		m.tasks = msg.page.Content
		m.cursor = clampCursor(m.cursor, len(m.tasks))
		return m, nil

	case taskSavedMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		if msg.err != nil {
			return m, notifyAPIErr(msg.err, "Could not save task")
		}
		m.state = stateNormal
		cmd := tea.Batch(notifySuccess(msg.text), m.refresh())
		return m, cmd

	case taskDeletedMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		m.state = stateNormal
		if msg.err != nil {
			return m, notifyAPIErr(msg.err, "Could not delete task")
		}
		cmd := tea.Batch(notifySuccess("Task deleted"), m.refresh())
		return m, cmd

	case browserOpenedMsg:
		if msg.err != nil {
			return m, notifyError("Could not open browser: " + msg.err.Error())
		}
		return m, notifySuccess("Opened in browser")

	case copiedMsg:
		if msg.err != nil {
			return m, notifyError("Could not copy: " + msg.err.Error())
		}
		return m, notifySuccess("Copied title to clipboard")

	case tea.KeyMsg:
		if m.projectID == 0 {
			return m, nil
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.state == stateAdding || m.state == stateEditing:
		m.form, cmd = m.form.Update(msg)
	case m.pager.active:
		m.pager.input, cmd = m.pager.input.Update(msg)
	}
	return m, cmd
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if m.pager.active {
		var changed bool
		var cmd tea.Cmd
		m.pager, changed, cmd = m.pager.Update(&m.list, msg)
		if changed {
			cmd := m.fetchTasks()
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
			t, ok := m.selected()
			if !ok {
				m.state = stateNormal
				return m, nil
			}
			c, pid := m.client, m.projectID
			return m, func() tea.Msg {
				return taskDeletedMsg{projectID: pid, err: c.DeleteTask(context.Background(), t.ID)}
			}
		case key.Matches(msg, keys.Cancel):
			m.state = stateNormal
		}
		return m, nil
	}

	if handled, changed := pageKey(&m.list, msg); handled {
		if changed {
			m.cursor = 0
			cmd := m.fetchTasks()
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		return m, navigate(viewProjects)
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Filter):
		m.list.CycleFilter()
		m.cursor = 0
		cmd := m.fetchTasks()
		return m, cmd
	case key.Matches(msg, keys.Sort):
		m.list.ToggleSort()
		m.cursor = 0
		cmd := m.fetchTasks()
		return m, cmd
	case key.Matches(msg, keys.Status):
		if t, ok := m.selected(); ok {
			return m, m.setStatus(t, t.Status.Next())
		}
	case key.Matches(msg, keys.Add):
		m.state = stateAdding
		m.form = newForm("New task",
			fieldDef{label: "Title", placeholder: "Task title", required: true},
			fieldDef{label: "Description", placeholder: "optional"},
			fieldDef{label: "Due date", placeholder: domain.DateLayout, required: true},
		)
		cmd := m.form.Focus()
		return m, cmd
	case key.Matches(msg, keys.Edit):
		if t, ok := m.selected(); ok {
			m.state = stateEditing
			m.editTask = t
			m.form = newForm("Edit task",
				fieldDef{label: "Title", value: t.Title, required: true},
				fieldDef{label: "Description", value: t.Description},
			)
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
		cmd := m.refresh()
		return m, cmd
	case key.Matches(msg, keys.Browser):
		return m, m.openInBrowser()
	case key.Matches(msg, keys.Copy):
		if t, ok := m.selected(); ok {
			title, copyFn := t.Title, m.copy
			return m, func() tea.Msg { return copiedMsg{err: copyFn(title)} }
		}
	}
	return m, nil
}

func (m detailModel) setStatus(t domain.Task, next domain.TaskStatus) tea.Cmd {
	c, pid := m.client, m.projectID
	return func() tea.Msg {
		_, err := c.UpdateTask(context.Background(), t.ID, domain.UpdateTaskRequest{Status: &next})
		return taskSavedMsg{projectID: pid, text: fmt.Sprintf("Marked %q %s", truncStr(t.Title, 30), next.Label()), err: err}
	}
}

func (m detailModel) save() (detailModel, tea.Cmd) {
	if missing := m.form.Missing(); missing != "" {
		return m, notifyError(missing + " is required")
	}
	c, pid := m.client, m.projectID

	if m.state == stateAdding {
		due, err := domain.ParseDate(m.form.Value(taskDueDate))
		if err != nil {
			return m, notifyError("Due date must look like " + domain.DateLayout)
		}
		req := domain.CreateTaskRequest{
			Title:       m.form.Value(taskTitle),
			Description: m.form.Value(taskDescription),
			DueDate:     due,
		}
		return m, func() tea.Msg {
			_, err := c.CreateTask(context.Background(), pid, req)
			return taskSavedMsg{projectID: pid, text: "Task created", err: err}
		}
	}

	// only changed fields go into the patch
	var req domain.UpdateTaskRequest
	if title := m.form.Value(taskTitle); title != m.editTask.Title {
		req.Title = &title
	}
	if desc := m.form.Value(taskDescription); desc != m.editTask.Description {
		req.Description = &desc
	}
	if req.Title == nil && req.Description == nil {
		m.state = stateNormal
		return m, nil
	}
	id := m.editTask.ID
	return m, func() tea.Msg {
		_, err := c.UpdateTask(context.Background(), id, req)
		return taskSavedMsg{projectID: pid, text: "Task updated", err: err}
	}
}

func (m detailModel) openInBrowser() tea.Cmd {
	u, err := browser.ProjectURL(m.webURL, m.projectID)
	if err != nil {
		return notifyError("Could not open browser: " + err.Error())
	}
	open := m.open
	return func() tea.Msg { return browserOpenedMsg{err: open(u)} }
}

func (m detailModel) View() string {
	var sb strings.Builder

	if m.state == stateAdding || m.state == stateEditing {
		sb.WriteString("\n" + m.form.View())
		return sb.String()
	}

	if m.project == nil {
		sb.WriteString("\n   " + dimStyle.Render("loading project…") + "\n")
		return sb.String()
	}
	p := m.project
	sb.WriteString(" " + titleStyle.Render(oneLine(p.Title)) + "  " + metaStyle.Render(formatCreated(p.CreatedAt.Time)) + "\n")
	if desc := oneLine(p.Description); desc != "" {
		width := 70
		if m.width > 0 {
			width = m.width - 4
		}
		sb.WriteString(" " + dimStyle.Render(truncStr(desc, width)) + "\n")
	}
	sb.WriteString(" " + progressBar(p.ProgressPercentage, 24) + "  " +
		metaStyle.Render(fmt.Sprintf("%d of %d tasks completed", p.CompletedTasks, p.TotalTasks)) + "\n\n")

	sortLabel := "due date"
	if m.list.SortTitle {
		sortLabel = "title"
	}
	header := fmt.Sprintf("── TASKS · %s · by %s ──", m.list.Filter.Label(), sortLabel)
	sb.WriteString(" " + sectionHeaderStyle.Render(header) + "\n\n")

	switch {
	case !m.loaded:
		sb.WriteString("   " + dimStyle.Render("loading tasks…") + "\n")
	case len(m.tasks) == 0 && m.list.Filter != domain.FilterAll:
		sb.WriteString("   " + dimStyle.Render("no "+m.list.Filter.Label()+" tasks · press f to change the filter") + "\n")
	case len(m.tasks) == 0:
		sb.WriteString("   " + dimStyle.Render("no tasks yet · press a to add one") + "\n")
	}

	now := m.now()
	titleWidth := 40
	if m.width > 0 {
		titleWidth = max(m.width-40, 16)
	}
	for i, t := range m.tasks {
		cursor := "   "
		titleSt := normalStyle
		if i == m.cursor {
			cursor = " " + accentStyle.Render(">") + " "
			titleSt = selectedStyle
		}
		sb.WriteString(cursor + StatusBadge(t.Status) + " " + titleSt.Render(truncStr(oneLine(t.Title), titleWidth)) +
			"  " + formatDue(t, now) + "\n")
		if desc := oneLine(t.Description); desc != "" {
			sb.WriteString("     " + dimStyle.Render(truncStr(desc, titleWidth+16)) + "\n")
		}
	}

	return sb.String()
}

// footer holds the pager and prompts, kept on screen by the app.
func (m detailModel) footer() string {
	if m.project == nil || m.state == stateAdding || m.state == stateEditing {
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
		if t, ok := m.selected(); ok {
			sb.WriteString(" " + rejectStyle.Render(fmt.Sprintf("Delete task %q?", truncStr(t.Title, 40))) +
				"  " + helpLine("y", "yes", "n", "no") + "\n")
		}
	}
	return sb.String()
}

func (m detailModel) helpKeys() string {
	switch {
	case m.state == stateAdding || m.state == stateEditing:
		return helpLine("tab", "next field", "enter", "save", "esc", "cancel")
	case m.state == stateDeleting:
		return helpLine("y", "confirm", "n", "cancel")
	case m.pager.active:
		return helpLine("enter", "go", "esc", "cancel")
	}
	parts := []string{
		bindingHelp(keys.Up), bindingHelp(keys.Status), bindingHelp(keys.Add),
		bindingHelp(keys.Edit), bindingHelp(keys.Del), bindingHelp(keys.Filter),
		bindingHelp(keys.Sort),
	}
	if !m.list.Controls().Hidden {
		parts = append(parts, bindingHelp(keys.PrevPage), bindingHelp(keys.GoTo))
	}
	parts = append(parts, bindingHelp(keys.Browser), bindingHelp(keys.Copy), bindingHelp(keys.Back))
	return strings.Join(parts, "  ")
}
