package models

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
	DefaultSort     = "id,asc"
)

// ErrInvalidSortField is returned for a sort key outside the allowed set.
var ErrInvalidSortField = errors.New("invalid sort field")

// SortField names a sortable task attribute as it appears in query strings.
type SortField string

const (
	SortByID          SortField = "id"
	SortByTitle       SortField = "title"
	SortByDescription SortField = "description"
	SortByDueDate     SortField = "dueDate"
	SortByPriority    SortField = "priority"
	SortByCompleted   SortField = "completed"
)

var sortFields = map[SortField]struct{}{
	SortByID:          {},
	SortByTitle:       {},
	SortByDescription: {},
	SortByDueDate:     {},
	SortByPriority:    {},
	SortByCompleted:   {},
}

// PageRequest selects one zero-based page of a sorted listing.
type PageRequest struct {
	Page int
	Size int
	Sort SortField
	Desc bool
}

// NewPageRequest builds a request from raw query values. Size is clamped
// to [1, MaxPageSize] and page to [0, math.MaxInt/size], so Offset never
// overflows. sort has the form "field[,dir]";
// an empty sort means DefaultSort and an unknown direction means ascending.
func NewPageRequest(page, size int, sort string) (PageRequest, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}

	if strings.TrimSpace(sort) == "" {
		sort = DefaultSort
	}
	field, dir, _ := strings.Cut(sort, ",")
	f := SortField(strings.TrimSpace(field))
	if _, ok := sortFields[f]; !ok {
		return PageRequest{}, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
	}

	return PageRequest{
		Page: page,
		Size: size,
		Sort: f,
		Desc: strings.EqualFold(strings.TrimSpace(dir), "desc"),
	}, nil
}

// DefaultPageRequest is page 0 of size DefaultPageSize sorted by id ascending.
func DefaultPageRequest() PageRequest {
	return PageRequest{Size: DefaultPageSize, Sort: SortByID}
}

// Offset is the number of rows to skip, saturating at math.MaxInt.
func (r PageRequest) Offset() int {
	if r.Page <= 0 || r.Size <= 0 {
		return 0
	}
	if r.Page > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return r.Page * r.Size
}

// CompareTasks orders a and b by r's sort field and direction with ties
// broken by ascending id. Nil descriptions and due dates sort after any
// value when ascending and before any value when descending.
func (r PageRequest) CompareTasks(a, b *Task) int {
	var c int
	switch r.Sort {
	case SortByID:
		c = cmp.Compare(a.ID, b.ID)
	case SortByTitle:
		c = cmp.Compare(a.Title, b.Title)
	case SortByDescription:
		c = compareNullable(a.Description, b.Description, cmp.Compare[string])
	case SortByDueDate:
		c = compareNullable(a.DueDate, b.DueDate, func(x, y time.Time) int { return x.Compare(y) })
	case SortByPriority:
		c = cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	case SortByCompleted:
		c = compareBool(a.Completed, b.Completed)
	}
	if r.Desc {
		c = -c
	}
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	return c
}

func compareNullable[T any](a, b *T, f func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return f(*a, *b)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Page is one slice of a listing plus the totals needed to navigate it.
type Page[T any] struct {
	Items         []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// NewPage assembles a page for req from the items found and the total
// number of matching rows. Last is set on the final page and on any page
// past the end, since neither has a successor.
func NewPage[T any](items []T, req PageRequest, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Items:         items,
		PageNumber:    req.Page,
		PageSize:      req.Size,
		TotalElements: total,
		TotalPages:    pages,
		Last:          req.Page >= pages-1,
	}
}

// Empty reports whether the page holds no items.
func (p *Page[T]) Empty() bool {
	return len(p.Items) == 0
}
