// Package tui is the interactive task list.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasktracker/internal/tracker"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

// Options for Run.
type Options struct {
	Theme  ui.Theme
	Logger *log.Logger
}

// tasksChangedMsg reports that a remote operation finished. The list is
// rebuilt from the controller either way; err has already been logged.
type tasksChangedMsg struct {
	op  string
	id  int // target task, zero for fetch and add
	err error
}

type modelTUI struct {
	ctx   context.Context
	ctrl  *tracker.Controller
	views *tracker.ItemViews
	log   *log.Logger
	theme ui.Theme

	list    list.Model
	spinner spinner.Model
	pending int // remote calls in flight

	// Inline add, bound to the controller's draft
	adding bool
	ti     textinput.Model

	// Inline edit of one task
	editing   bool
	editID    int
	editInput textinput.Model

	// Pick-up-and-drop reorder
	grabbing bool
	grabID   int

	width, height int
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit/done"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	compBind   = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "completed only"))
	notBind    = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "not completed only"))
	grabBind   = key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "pick up/drop"))
	moveBind   = key.NewBinding(key.WithKeys("K", "J"), key.WithHelp("K/J", "move up/down"))
	reloadBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
)

func newModel(ctx context.Context, ctrl *tracker.Controller, opt Options) modelTUI {
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	theme := opt.Theme
	if theme.Name == "" {
		theme = ui.Current()
	}

	l := list.New(nil, itemDelegate{theme: theme}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.Title
	l.Styles.HelpStyle = theme.Help
	l.Styles.PaginationStyle = theme.Help
	l.SetStatusBarItemName("task", "tasks")
	short := []key.Binding{addBind, editBind, toggleBind, deleteBind, compBind, notBind, grabBind}
	full := append(append([]key.Binding{}, short...), moveBind, reloadBind)
	l.AdditionalShortHelpKeys = func() []key.Binding { return short }
	l.AdditionalFullHelpKeys = func() []key.Binding { return full }

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Accent

	m := modelTUI{
		ctx:     ctx,
		ctrl:    ctrl,
		views:   tracker.NewItemViews(),
		log:     logger,
		theme:   theme,
		list:    l,
		spinner: sp,
		pending: 1,
		width:   80,
		height:  24,
	}

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "Add.."
	m.ti.CharLimit = 200

	m.editInput = textinput.New()
	m.editInput.Prompt = "> "
	m.editInput.Placeholder = "Edit task title..."
	m.editInput.CharLimit = 200

	m.list.Title = m.header()
	m.resize()
	return m
}

// Run starts the Bubble Tea program. It fetches on start and after every
// filter change.
func Run(ctx context.Context, ctrl *tracker.Controller, opt Options) error {
	m := newModel(ctx, ctrl, opt)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init issues the initial fetch; newModel already counts it as pending.
func (m modelTUI) Init() tea.Cmd {
	return tea.Batch(m.run("fetch", 0, m.ctrl.Fetch), m.spinner.Tick)
}

// run wraps fn as a command that reports back with a tasksChangedMsg.
func (m modelTUI) run(op string, id int, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return tasksChangedMsg{op: op, id: id, err: fn(ctx)}
	}
}

// remote is run plus in-flight bookkeeping for the spinner.
func (m modelTUI) remote(op string, id int, fn func(ctx context.Context) error) (modelTUI, tea.Cmd) {
	run := m.run(op, id, fn)
	m.pending++
	if m.pending == 1 {
		return m, tea.Batch(run, m.spinner.Tick)
	}
	return m, run
}

func (m modelTUI) fetch() (modelTUI, tea.Cmd) {
	return m.remote("fetch", 0, m.ctrl.Fetch)
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksChangedMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.err != nil {
			m.log.Debug("remote operation failed", "op", msg.op, "err", msg.err)
		}
		switch {
		case msg.op == "add":
			m.ti.SetValue(m.ctrl.Draft())
		case msg.op == "delete" && msg.err == nil:
			m.views.Forget(msg.id)
		}
		rows := m.syncList()
		return m, rows
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case m.adding:
			return m.updateAdding(km)
		case m.editing:
			return m.updateEditing(km)
		}
		if next, cmd, handled := m.updateKeys(km); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := m.ti.Value()
		if strings.TrimSpace(title) == "" {
			return m, nil
		}
		m.adding = false
		m.ti.Blur()
		m.resize()
		return m.remote("add", 0, func(ctx context.Context) error {
			return m.ctrl.Add(ctx, title)
		})
	case "esc":
		m.adding = false
		m.ti.Blur()
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.ctrl.SetDraft(m.ti.Value())
	return m, cmd
}

func (m modelTUI) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v, ok := m.views.Lookup(m.editID)
	if !ok {
		m.editing = false
		return m, nil
	}
	switch msg.String() {
	case "enter":
		v.SetText(m.editInput.Value())
		title, ok := v.Commit()
		if !ok {
			return m, nil
		}
		m.closeEditor()
		id := m.editID
		next, cmd := m.remote("edit", id, func(ctx context.Context) error {
			return m.ctrl.Edit(ctx, id, title)
		})
		rows := next.syncList()
		return next, tea.Batch(cmd, rows)
	case "esc":
		// Done: leave edit mode, keep whatever was typed.
		v.SetText(m.editInput.Value())
		v.ToggleEdit()
		m.closeEditor()
		rows := m.syncList()
		return m, rows
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	v.SetText(m.editInput.Value())
	return m, cmd
}

func (m *modelTUI) closeEditor() {
	m.editing = false
	m.editInput.Blur()
	m.resize()
}

func (m modelTUI) updateKeys(msg tea.KeyMsg) (modelTUI, tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit, true
	case "esc":
		if m.grabbing {
			m.grabbing = false
			rows := m.syncList()
			return m, rows, true
		}
		return m, tea.Quit, true

	case "a":
		m.adding = true
		m.ti.SetValue(m.ctrl.Draft())
		m.ti.CursorEnd()
		m.ti.Focus()
		m.resize()
		return m, textinput.Blink, true

	case "e":
		task, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		v := m.views.For(task.Task)
		v.ToggleEdit()
		if v.Editing() {
			m.editing = true
			m.editID = task.Task.ID
			m.editInput.SetValue(v.Text())
			m.editInput.CursorEnd()
			m.editInput.Focus()
			m.resize()
			rows := m.syncList()
			return m, tea.Batch(textinput.Blink, rows), true
		}
		rows := m.syncList()
		return m, rows, true

	case " ":
		if task, ok := m.selected(); ok {
			m.ctrl.ToggleCompletion(task.Task.ID)
		}
		rows := m.syncList()
		return m, rows, true

	case "d":
		task, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		id := task.Task.ID
		next, cmd := m.remote("delete", id, func(ctx context.Context) error {
			return m.ctrl.Delete(ctx, id)
		})
		return next, cmd, true

	case "c":
		if !m.ctrl.ToggleFilterCompleted() {
			return m, nil, true
		}
		next, cmd := m.fetch()
		rows := next.syncList()
		return next, tea.Batch(cmd, rows), true

	case "n":
		if !m.ctrl.ToggleFilterNot() {
			return m, nil, true
		}
		next, cmd := m.fetch()
		rows := next.syncList()
		return next, tea.Batch(cmd, rows), true

	case "r":
		next, cmd := m.fetch()
		return next, cmd, true

	case "m":
		task, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		if !m.grabbing {
			m.grabbing = true
			m.grabID = task.Task.ID
			rows := m.syncList()
			return m, rows, true
		}
		m.grabbing = false
		m.ctrl.Reorder(m.grabID, task.Task.ID)
		cmd := m.syncList()
		m.selectID(m.grabID)
		return m, cmd, true

	case "K", "J":
		task, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		i := m.list.Index()
		j := i - 1
		if msg.String() == "J" {
			j = i + 1
		}
		items := m.list.Items()
		if j < 0 || j >= len(items) {
			return m, nil, true
		}
		over, ok := items[j].(listItem)
		if !ok {
			return m, nil, true
		}
		m.ctrl.Reorder(task.Task.ID, over.Task.ID)
		cmd := m.syncList()
		m.selectID(task.Task.ID)
		return m, cmd, true
	}
	return m, nil, false
}

func (m modelTUI) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m *modelTUI) selectID(id int) {
	for i, it := range m.list.Items() {
		if li, ok := it.(listItem); ok && li.Task.ID == id {
			m.list.Select(i)
			return
		}
	}
}

// syncList rebuilds the list rows from the controller, keeping the cursor
// on the same task when it is still present.
func (m *modelTUI) syncList() tea.Cmd {
	keep, hadSel := m.selected()
	tasks := m.ctrl.Tasks()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		li := listItem{Task: t, Label: "Edit"}
		li.Grabbed = m.grabbing && t.ID == m.grabID
		if v, ok := m.views.Lookup(t.ID); ok {
			li.Editing = v.Editing()
			li.Label = v.Label()
		}
		items = append(items, li)
	}
	cmd := m.list.SetItems(items)
	if hadSel {
		m.selectID(keep.Task.ID)
	}
	m.list.Title = m.header()
	return cmd
}

func (m modelTUI) header() string {
	t := m.theme
	done, pending := m.ctrl.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("TASK TRACKER"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
}

// filterBar shows both filter toggles; the one blocked by the other is muted.
func (m modelTUI) filterBar() string {
	t := m.theme
	comp, not := m.ctrl.FilterFlags()
	render := func(label string, on, disabled bool) string {
		switch {
		case disabled:
			return t.Muted.Render(label)
		case on:
			return t.Selected.Render(label)
		default:
			return label
		}
	}
	bar := "Show: " +
		render("[c] completed", comp, not) + "  " +
		render("[n] not completed", not, comp) + "  " +
		t.Muted.Render("("+m.ctrl.Filter().String()+")")
	if m.grabbing {
		bar += "  " + t.Grab.Render("moving: press m on the target")
	}
	if m.pending > 0 {
		bar += "  " + m.spinner.View()
	}
	return bar
}

func (m *modelTUI) resize() {
	h := m.height - 5
	if m.adding || m.editing {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m modelTUI) View() string {
	content := m.filterBar() + "\n" + m.list.View()
	if m.adding || m.editing {
		bar := lipgloss.NewStyle().
			Border(m.theme.Border).
			BorderForeground(m.theme.BorderColor).
			Padding(0, 1)
		title := "Add new task"
		input := m.ti.View()
		if m.editing {
			title = "Edit task (enter saves, esc is Done)"
			input = m.editInput.View()
		}
		content += "\n" + bar.Render(title+"\n"+input)
	}
	return panelString(m.theme, content)
}

func panelString(t ui.Theme, inner string) string {
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(inner)
}
