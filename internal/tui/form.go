package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 255

// cursorMode applies to every text input. Tests switch it to static.
var cursorMode = cursor.CursorBlink

type fieldDef struct {
	label       string
	placeholder string
	value       string
	required    bool
	password    bool
}

type formField struct {
	label    string
	required bool
	input    textinput.Model
}

// form is a vertical stack of text inputs with one focused field.
type form struct {
	title  string
	fields []formField
	focus  int
}

func newForm(title string, defs ...fieldDef) form {
	f := form{title: title}
	for _, s := range defs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = s.placeholder
		ti.CharLimit = maxInputLen
		ti.Cursor.SetMode(cursorMode)
		ti.Width = 40
		ti.SetValue(s.value)
		if s.password {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.fields = append(f.fields, formField{label: s.label, required: s.required, input: ti})
	}
	return f
}

// Focus focuses the first field.
func (f *form) Focus() tea.Cmd {
	return f.focusField(0)
}

func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.fields[f.focus].input.Blur()
	f.focus = (i + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

// Value returns the trimmed value of field i.
func (f form) Value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// Raw returns field i without trimming. Passwords are sent as typed.
func (f form) Raw(i int) string {
	return f.fields[i].input.Value()
}

// Missing returns the label of the first required field left blank.
func (f form) Missing() string {
	for i, fl := range f.fields {
		if fl.required && f.Value(i) == "" {
			return fl.label
		}
	}
	return ""
}

// Update moves focus on tab/shift+tab/up/down and forwards everything else
// to the focused input.
func (f form) Update(msg tea.Msg) (form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return f, f.focusField(f.focus + 1)
		case "shift+tab", "up":
			return f, f.focusField(f.focus - 1)
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f form) View() string {
	var sb strings.Builder
	if f.title != "" {
		sb.WriteString(" " + sectionHeaderStyle.Render("── "+f.title+" ──") + "\n\n")
	}
	width := 0
	for _, fl := range f.fields {
		width = max(width, len(fl.label))
	}
	for i, fl := range f.fields {
		label := fl.label + ":" + strings.Repeat(" ", width-len(fl.label))
		if fl.required {
			label += "*"
		} else {
			label += " "
		}
		if i == f.focus {
			sb.WriteString("   " + accentStyle.Render(">") + " " + inputPromptStyle.Render(label) + " " + fl.input.View() + "\n")
		} else {
			sb.WriteString("     " + dimStyle.Render(label) + " " + fl.input.View() + "\n")
		}
	}
	return sb.String()
}
