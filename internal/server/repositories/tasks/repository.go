// Package tasks declares the owner-scoped task store and its PostgreSQL
// implementation. Every lookup and mutation takes the owner id; a task that
// exists but belongs to someone else is reported as common.ErrorNotFound.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type Repository interface {
	// Create inserts task and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Task, error)
	// FindByIDAndOwnerForUpdate locks the row until the surrounding
	// transaction ends.
	FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID int64) (*models.Task, error)
	// Update persists every mutable field of task, matching on ID and OwnerID.
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id, ownerID int64) error
	SetCompleted(ctx context.Context, id, ownerID int64, completed bool) error
	// List returns one page of ownerID's tasks matching filter and the
	// total number of matching tasks.
	List(ctx context.Context, ownerID int64, filter models.TaskFilter, page models.PageRequest) ([]models.Task, int64, error)
}
