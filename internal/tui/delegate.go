package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

// listItem adapts a Task to bubbles/list.Item
type listItem struct {
	Task    model.Task
	Grabbed bool
	Editing bool
	Label   string // Edit or Done
}

func (i listItem) Title() string       { return i.Task.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Task.Title }

// Single-line rows: cursor, grab marker, checkbox, title.
type itemDelegate struct {
	theme ui.Theme
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := d.theme

	box := t.Muted.Render(t.BoxUnchecked)
	text := it.Task.Title
	if it.Task.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}

	mark := " "
	if it.Grabbed {
		mark = t.Grab.Render(t.SymGrab)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	line := fmt.Sprintf("%s%s %s %s", prefix, mark, box, text)
	if (it.Editing || index == m.Index()) && it.Label != "" {
		line += "  " + t.Accent.Render("["+it.Label+"]")
	}
	fmt.Fprintln(w, line)
}
