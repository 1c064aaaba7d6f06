// Package tracker holds the task list state and the operations that
// change it. Remote failures are logged and returned; they never alter
// local state.
package tracker

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasktracker/internal/api"
	"github.com/Makepad-fr/tasktracker/internal/model"
)

// Controller owns the in-memory collection and the filter flags.
//
// The mutex only keeps memory access safe. Remote calls are made outside
// it, so two overlapping fetches race and whichever returns last wins.
type Controller struct {
	remote api.Remote
	log    *log.Logger

	mu              sync.Mutex
	tasks           []model.Task
	filterCompleted bool
	filterNot       bool
	draft           string
}

func New(remote api.Remote, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{remote: remote, log: logger}
}

// Tasks returns a copy of the collection in display order.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *Controller) Filter() model.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.FilterFrom(c.filterCompleted, c.filterNot)
}

// FilterFlags returns the raw completed / not-completed flags.
func (c *Controller) FilterFlags() (completed, not bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterCompleted, c.filterNot
}

// ToggleFilterCompleted flips the completed flag. It is disabled while the
// not-completed flag is on and reports whether anything changed.
func (c *Controller) ToggleFilterCompleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filterNot {
		return false
	}
	c.filterCompleted = !c.filterCompleted
	return true
}

// ToggleFilterNot flips the not-completed flag, disabled while the
// completed flag is on.
func (c *Controller) ToggleFilterNot() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filterCompleted {
		return false
	}
	c.filterNot = !c.filterNot
	return true
}

func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) SetDraft(s string) {
	c.mu.Lock()
	c.draft = s
	c.mu.Unlock()
}

// Stats counts completed and pending tasks in the current collection.
func (c *Controller) Stats() (done, pending int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Fetch reads the collection for the current filter and replaces the
// local one wholesale.
func (c *Controller) Fetch(ctx context.Context) error {
	f := c.Filter()
	tasks, err := c.remote.List(ctx, f)
	if err != nil {
		c.log.Error("fetch tasks", "filter", f, "err", err)
		return err
	}
	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
	c.log.Debug("fetched tasks", "filter", f, "count", len(tasks))
	return nil
}

// Add creates a task remotely and appends the server's copy. Nothing
// changes locally until the server has answered.
func (c *Controller) Add(ctx context.Context, title string) error {
	created, err := c.remote.Create(ctx, title, false)
	if err != nil {
		c.log.Error("add task", "title", title, "err", err)
		return err
	}
	c.mu.Lock()
	dup := indexOf(c.tasks, created.ID) >= 0
	c.tasks = append(c.tasks, created)
	c.draft = ""
	c.mu.Unlock()
	if dup {
		// Mock backends such as jsonplaceholder hand out the same id for
		// every POST. The task is kept; id-based operations hit the first match.
		c.log.Warn("add task: server returned an id already in the list", "id", created.ID)
	}
	c.log.Info("added task", "id", created.ID)
	return nil
}

// Delete removes the task remotely, then drops it locally by id.
func (c *Controller) Delete(ctx context.Context, id int) error {
	if err := c.remote.Delete(ctx, id); err != nil {
		if api.IsNotFound(err) {
			c.log.Warn("delete task: not on server, keeping local entry", "id", id)
		} else {
			c.log.Error("delete task", "id", id, "err", err)
		}
		return err
	}
	c.mu.Lock()
	kept := make([]model.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.mu.Unlock()
	c.log.Info("deleted task", "id", id)
	return nil
}

// ToggleCompletion flips the completed flag of one task. Local only; the
// change is lost on the next fetch.
func (c *Controller) ToggleCompletion(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i].Completed = !c.tasks[i].Completed
			return true
		}
	}
	return false
}

// Edit sends the new title with completed=false and, on success, updates
// only the local title.
func (c *Controller) Edit(ctx context.Context, id int, title string) error {
	if _, err := c.remote.Update(ctx, id, title, false); err != nil {
		c.log.Error("edit task", "id", id, "err", err)
		return err
	}
	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i].Title = title
		}
	}
	c.mu.Unlock()
	c.log.Info("edited task", "id", id)
	return nil
}

// Reorder moves the task activeID to the position held by overID. Equal
// or unknown ids leave the list as it is.
func (c *Controller) Reorder(activeID, overID int) bool {
	if activeID == overID {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	from, to := indexOf(c.tasks, activeID), indexOf(c.tasks, overID)
	if from < 0 || to < 0 {
		return false
	}
	c.tasks = moveTask(c.tasks, from, to)
	return true
}

func indexOf(tasks []model.Task, id int) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// moveTask returns a new slice with the element at from placed at to.
func moveTask(tasks []model.Task, from, to int) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	moved := tasks[from]
	for i, t := range tasks {
		if i == from {
			continue
		}
		out = append(out, t)
	}
	out = append(out, model.Task{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}
