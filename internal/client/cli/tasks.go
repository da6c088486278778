package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
)

const (
	dateLayout    = "2006-01-02"
	clearValue    = "-"
	pageSizeShown = 10
)

var priorities = []string{"LOW", "MEDIUM", "HIGH"}

func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	desc, err := GetSimpleText(a.reader, "Description (empty for none)", a.out)
	if err != nil {
		return err
	}
	dueRaw, err := GetSimpleText(a.reader, "Due date, YYYY-MM-DD or RFC 3339 (empty for none)", a.out)
	if err != nil {
		return err
	}
	prioRaw, err := GetSimpleText(a.reader, "Priority LOW, MEDIUM or HIGH (empty for MEDIUM)", a.out)
	if err != nil {
		return err
	}

	t := api.NewTask{Title: title, Priority: "MEDIUM"}
	if desc != "" {
		t.Description = &desc
	}
	if dueRaw != "" {
		due, err := parseDue(dueRaw)
		if err != nil {
			return err
		}
		t.DueDate = &due
	}
	if prioRaw != "" {
		if t.Priority, err = parsePriority(prioRaw); err != nil {
			return err
		}
	}

	id, err := a.api.CreateTask(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created todo #%d\n", id)
	return nil
}

// Edit prompts for every field; empty input keeps the current value and
// "-" clears description or due date.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	cur, err := a.api.GetTask(ctx, id)
	if err != nil {
		return err
	}

	var p api.TaskPatch
	title, err := GetSimpleText(a.reader, fmt.Sprintf("Title [%s]", cur.Title), a.out)
	if err != nil {
		return err
	}
	if title != "" {
		p.Title = &title
	}

	desc, err := GetSimpleText(a.reader, fmt.Sprintf("Description [%s] (- to clear)", deref(cur.Description)), a.out)
	if err != nil {
		return err
	}
	switch desc {
	case "":
	case clearValue:
		p.ClearDescription = true
	default:
		p.Description = &desc
	}

	dueRaw, err := GetSimpleText(a.reader, fmt.Sprintf("Due date [%s] (- to clear)", formatDue(cur.DueDate)), a.out)
	if err != nil {
		return err
	}
	switch dueRaw {
	case "":
	case clearValue:
		p.ClearDueDate = true
	default:
		due, err := parseDue(dueRaw)
		if err != nil {
			return err
		}
		p.DueDate = &due
	}

	prioRaw, err := GetSimpleText(a.reader, fmt.Sprintf("Priority [%s]", cur.Priority), a.out)
	if err != nil {
		return err
	}
	if prioRaw != "" {
		prio, err := parsePriority(prioRaw)
		if err != nil {
			return err
		}
		p.Priority = &prio
	}

	if err := a.api.UpdateTask(ctx, id, p); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated todo #%d\n", id)
	return nil
}

// List shows one page. Arguments: optional page number (1-based) and sort
// expression such as "dueDate,desc".
func (a *App) List(ctx context.Context, args []string) error {
	opts, err := pageArgs(args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		opts.Sort = args[1]
	}
	page, err := a.api.ListTasks(ctx, opts)
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: search <keyword>")
	}
	page, err := a.api.SearchTasks(ctx, strings.Join(args, " "), api.PageOptions{Size: pageSizeShown})
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}

func (a *App) Status(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: status <done|open> [page]")
	}
	var completed bool
	switch args[0] {
	case "done":
		completed = true
	case "open":
	default:
		return fmt.Errorf("unknown status %q, use done or open", args[0])
	}
	opts, err := pageArgs(args[1:])
	if err != nil {
		return err
	}
	page, err := a.api.FilterTasks(ctx, completed, opts)
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	t, err := a.api.GetTask(ctx, id)
	if err != nil {
		return err
	}
	a.printTask(t)
	return nil
}

func (a *App) SetDone(ctx context.Context, args []string, done bool) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.api.SetCompletion(ctx, id, done); err != nil {
		return err
	}
	if done {
		fmt.Fprintf(a.out, "Todo #%d marked done\n", id)
	} else {
		fmt.Fprintf(a.out, "Todo #%d marked open\n", id)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted todo #%d\n", id)
	return nil
}

func idArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("usage: <command> <id>")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// pageArgs reads a 1-based page number from args[0].
func pageArgs(args []string) (api.PageOptions, error) {
	opts := api.PageOptions{Size: pageSizeShown}
	if len(args) == 0 {
		return opts, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return opts, fmt.Errorf("invalid page %q", args[0])
	}
	opts.Page = n - 1
	return opts, nil
}

// parseDue accepts RFC 3339 or a bare date, which means the end of that
// day in local time.
func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", s)
	}
	return d.Add(24*time.Hour - time.Second), nil
}

func parsePriority(s string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(s))
	for _, known := range priorities {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q, use LOW, MEDIUM or HIGH", s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
