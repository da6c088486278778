// Package lockout tracks failed logins per email and temporarily locks an
// account after too many consecutive failures.
package lockout

import (
	"context"
	"time"
)

// DefaultCooldown applies when a store is created with a non-positive cooldown.
const DefaultCooldown = 15 * time.Minute

// Store is consulted before every credential check. Implementations with
// maxAttempts <= 0 never lock.
type Store interface {
	// IsLocked reports whether email is locked and for how much longer.
	IsLocked(ctx context.Context, email string) (bool, time.Duration, error)
	// RecordFailure counts a failed login and may start a lock.
	RecordFailure(ctx context.Context, email string) error
	// RecordSuccess clears the failure count.
	RecordSuccess(ctx context.Context, email string) error
}
