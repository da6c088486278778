package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Priority is the closed set of task priorities.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ErrInvalidPriority is returned when a value outside LOW, MEDIUM, HIGH is decoded.
var ErrInvalidPriority = errors.New("priority must be one of LOW, MEDIUM, HIGH")

// Priorities lists every valid priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority converts s to a Priority. Matching is exact.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

// Valid reports whether p is one of the declared priorities.
func (p Priority) Valid() bool {
	_, err := ParsePriority(string(p))
	return err == nil
}

// Rank orders priorities LOW < MEDIUM < HIGH. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

func (p Priority) String() string {
	return string(p)
}

// UnmarshalJSON rejects anything that is not a known priority string,
// including null.
func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, string(b))
	}
	v, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
