package models

import "time"

// Task is a todo item owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"-"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask carries the fields accepted when a task is created.
type NewTask struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    Priority
}

// TaskUpdate is a partial update. Unset fields keep their stored value.
// Description and DueDate set to nil clear the stored value.
type TaskUpdate struct {
	Title       Optional[string]
	Description Optional[*string]
	DueDate     Optional[*time.Time]
	Priority    Optional[Priority]
	Completed   Optional[bool]
}

// Apply copies every set field of u onto t and reports whether anything changed.
func (u TaskUpdate) Apply(t *Task) bool {
	changed := false
	if v, ok := u.Title.Get(); ok {
		t.Title = v
		changed = true
	}
	if v, ok := u.Description.Get(); ok {
		t.Description = v
		changed = true
	}
	if v, ok := u.DueDate.Get(); ok {
		t.DueDate = v
		changed = true
	}
	if v, ok := u.Priority.Get(); ok {
		t.Priority = v
		changed = true
	}
	if v, ok := u.Completed.Get(); ok {
		t.Completed = v
		changed = true
	}
	return changed
}

// TaskFilter narrows a task listing. Nil fields do not filter.
type TaskFilter struct {
	Keyword   *string
	Completed *bool
}
