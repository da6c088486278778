// Package users declares the credential store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository stores registered identities.
type Repository interface {
	// Create inserts user and fills in its ID and CreatedAt. A duplicate
	// email yields common.ErrDuplicateIdentity.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail returns common.ErrorNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID returns common.ErrorNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// UpdatePasswordHash replaces the stored hash, e.g. after an algorithm upgrade.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
