package cli

import (
	"fmt"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

func listPanel(tasks []model.Task, done, pending int, f model.Filter, group bool) []string {
	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Tasks"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(tasks),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(done, done+pending, 28)))
	if f != model.FilterAll {
		lines = append(lines, t.Muted.Render("filter: "+f.String()))
	}
	lines = append(lines, "")

	if group {
		lines = append(lines, groupLines(tasks)...)
	} else {
		lines = append(lines, flatLines(tasks)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `tasktracker add \"Buy milk\"`"))
	return lines
}

func flatLines(tasks []model.Task) []string {
	t := ui.Current()
	if len(tasks) == 0 {
		return []string{t.Muted.Render("no tasks")}
	}
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		id := fmt.Sprintf("#%-4d", task.ID)
		box := t.Muted.Render(t.BoxUnchecked)
		if task.Completed {
			box = t.Success.Render(t.BoxChecked)
		}
		title := []rune(task.Title)
		if len(title) > 80 {
			title = append(title[:77], []rune("...")...)
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(id), box, string(title)))
	}
	return out
}

func groupLines(tasks []model.Task) []string {
	t := ui.Current()
	var pend, done []model.Task
	for _, task := range tasks {
		if task.Completed {
			done = append(done, task)
		} else {
			pend = append(pend, task)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
