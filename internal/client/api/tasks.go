package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type NewTask struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    string     `json:"priority"`
}

// TaskPatch lists the fields to change. Nil fields are left alone; the
// Clear flags send an explicit null.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	DueDate          *time.Time
	ClearDueDate     bool
	Priority         *string
	Completed        *bool
}

func (p TaskPatch) body(id int64) map[string]any {
	m := map[string]any{"id": id}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	switch {
	case p.ClearDescription:
		m["description"] = nil
	case p.Description != nil:
		m["description"] = *p.Description
	}
	switch {
	case p.ClearDueDate:
		m["dueDate"] = nil
	case p.DueDate != nil:
		m["dueDate"] = p.DueDate.Format(time.RFC3339)
	}
	if p.Priority != nil {
		m["priority"] = *p.Priority
	}
	if p.Completed != nil {
		m["completed"] = *p.Completed
	}
	return m
}

type Page struct {
	Content       []Task `json:"content"`
	PageNumber    int    `json:"pageNumber"`
	PageSize      int    `json:"pageSize"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	Last          bool   `json:"last"`
}

// PageOptions map to the page, size and sort query parameters. Zero values
// are omitted so the server defaults apply.
type PageOptions struct {
	Page int
	Size int
	Sort string
}

func (o PageOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		q.Set("size", strconv.Itoa(o.Size))
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	return q
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/todos", nil, t, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, p TaskPatch) error {
	return c.call(ctx, http.MethodPut, "/todos", nil, p.body(id), nil)
}

func (c *Client) GetTask(ctx context.Context, id int64) (*Task, error) {
	var t Task
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/todos/%d", id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/todos/%d", id), nil, nil, nil)
}

func (c *Client) SetCompletion(ctx context.Context, id int64, completed bool) error {
	q := url.Values{"completed": {strconv.FormatBool(completed)}}
	return c.call(ctx, http.MethodPatch, fmt.Sprintf("/todos/%d/completion", id), q, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context, o PageOptions) (*Page, error) {
	return c.page(ctx, "/todos", o.values())
}

func (c *Client) SearchTasks(ctx context.Context, keyword string, o PageOptions) (*Page, error) {
	q := o.values()
	q.Set("keyword", keyword)
	return c.page(ctx, "/todos/search", q)
}

func (c *Client) FilterTasks(ctx context.Context, completed bool, o PageOptions) (*Page, error) {
	q := o.values()
	q.Set("completed", strconv.FormatBool(completed))
	return c.page(ctx, "/todos/status", q)
}

// page decodes a page; the server answers 204 when it is empty.
func (c *Client) page(ctx context.Context, path string, q url.Values) (*Page, error) {
	p := &Page{}
	if err := c.call(ctx, http.MethodGet, path, q, nil, p); err != nil {
		return nil, err
	}
	if p.Content == nil {
		p.Content = []Task{}
	}
	return p, nil
}
