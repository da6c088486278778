package cli

import (
	"fmt"
	"time"

	"github.com/muesli/termenv"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
)

func (a *App) priorityStyle(p string) termenv.Style {
	s := a.term.String(fmt.Sprintf("%-6s", p))
	switch p {
	case "HIGH":
		return s.Foreground(a.term.Color("1")).Bold()
	case "MEDIUM":
		return s.Foreground(a.term.Color("3"))
	default:
		return s.Foreground(a.term.Color("2"))
	}
}

func (a *App) printPage(p *api.Page) {
	if len(p.Content) == 0 {
		fmt.Fprintln(a.out, "No todos")
		return
	}
	for i := range p.Content {
		t := &p.Content[i]
		mark := "[ ]"
		title := a.term.String(t.Title)
		if t.Completed {
			mark = "[x]"
			title = title.Faint()
		}
		line := fmt.Sprintf("%s #%-4d %s %s", mark, t.ID, a.priorityStyle(t.Priority), title)
		if t.DueDate != nil {
			line += "  due " + formatDue(t.DueDate)
		}
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintf(a.out, "page %d of %d, %d total\n", p.PageNumber+1, max(p.TotalPages, 1), p.TotalElements)
}

func (a *App) printTask(t *api.Task) {
	status := "open"
	if t.Completed {
		status = "done"
	}
	fmt.Fprintf(a.out, "#%d %s\n", t.ID, a.term.String(t.Title).Bold())
	fmt.Fprintf(a.out, "  priority:    %s\n", a.priorityStyle(t.Priority))
	fmt.Fprintf(a.out, "  status:      %s\n", status)
	if t.Description != nil {
		fmt.Fprintf(a.out, "  description: %s\n", *t.Description)
	}
	if t.DueDate != nil {
		fmt.Fprintf(a.out, "  due:         %s\n", formatDue(t.DueDate))
	}
	fmt.Fprintf(a.out, "  created:     %s\n", t.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "  updated:     %s\n", t.UpdatedAt.Local().Format(time.DateTime))
}

func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(time.DateTime)
}
