package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings shared by the list views.
type keyMap struct {
	Up, Down         key.Binding
	Open, Back       key.Binding
	Add, Edit, Del   key.Binding
	PrevPage, NextPg key.Binding
	GoTo, Reload     key.Binding
	Filter, Sort     key.Binding
	Status           key.Binding
	Browser, Copy    key.Binding
	Confirm, Cancel  key.Binding
	Logout           key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "nav")),
	Down:     key.NewBinding(key.WithKeys("j", "down")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Add:      key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Del:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	PrevPage: key.NewBinding(key.WithKeys("[", "left", "h"), key.WithHelp("[/]", "page")),
	NextPg:   key.NewBinding(key.WithKeys("]", "right", "l")),
	GoTo:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Status:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "status")),
	Browser:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
	Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy title")),
	Confirm:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Cancel:   key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
	Logout:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "log out")),
}

// bindingHelp renders a binding's help text for the help bar.
func bindingHelp(b key.Binding) string {
	h := b.Help()
	return helpEntry(h.Key, h.Desc)
}
