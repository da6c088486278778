package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

// TaskService manages the caller's own tasks. Every method takes the
// caller's Principal; tasks owned by anyone else behave as if they did not
// exist and yield common.ErrTaskNotFound.
type TaskService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTaskService(m repomanager.RepositoryManager, log logging.Logger) *TaskService {
	if log == nil {
		log = logging.Nop{}
	}
	return &TaskService{repomanager: m, log: log.With("component", "tasks")}
}

// Create stores a new incomplete task owned by the caller and returns its id.
func (s *TaskService) Create(ctx context.Context, p models.Principal, n models.NewTask) (int64, error) {
	if !n.Priority.Valid() {
		return 0, common.NewValidationError("priority", models.ErrInvalidPriority.Error())
	}

	ownerID, err := s.resolveOwner(ctx, p)
	if err != nil {
		return 0, err
	}

	task := &models.Task{
		OwnerID:     ownerID,
		Title:       n.Title,
		Description: n.Description,
		DueDate:     n.DueDate,
		Priority:    n.Priority,
	}
	created, err := s.repomanager.Tasks(s.repomanager.Conn()).Create(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrIdentityNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("error creating task: %w", err)
	}

	s.log.Debug(ctx, "task created", "task_id", created.ID, "user_id", ownerID)
	return created.ID, nil
}

// Update applies the set fields of u to task id. The read and the write
// happen in one transaction with the row locked.
func (s *TaskService) Update(ctx context.Context, p models.Principal, id int64, u models.TaskUpdate) error {
	if v, ok := u.Priority.Get(); ok && !v.Valid() {
		return common.NewValidationError("priority", models.ErrInvalidPriority.Error())
	}

	ownerID, err := s.resolveOwner(ctx, p)
	if err != nil {
		return err
	}

	return s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		task, err := repo.FindByIDAndOwnerForUpdate(ctx, id, ownerID)
		if err != nil {
			return taskErr(err, "error loading task")
		}
		if !u.Apply(task) {
			return nil
		}
		if err := repo.Update(ctx, task); err != nil {
			return taskErr(err, "error updating task")
		}
		return nil
	})
}

// Delete removes task id.
func (s *TaskService) Delete(ctx context.Context, p models.Principal, id int64) error {
	ownerID, err := s.resolveOwner(ctx, p)
	if err != nil {
		return err
	}
	if err := s.repomanager.Tasks(s.repomanager.Conn()).Delete(ctx, id, ownerID); err != nil {
		return taskErr(err, "error deleting task")
	}
	s.log.Debug(ctx, "task deleted", "task_id", id, "user_id", ownerID)
	return nil
}

func (s *TaskService) GetByID(ctx context.Context, p models.Principal, id int64) (*models.Task, error) {
	ownerID, err := s.resolveOwner(ctx, p)
	if err != nil {
		return nil, err
	}
	task, err := s.repomanager.Tasks(s.repomanager.Conn()).FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, taskErr(err, "error loading task")
	}
	return task, nil
}

// List returns one page of the caller's tasks.
func (s *TaskService) List(ctx context.Context, p models.Principal, page models.PageRequest) (*models.Page[models.Task], error) {
	return s.list(ctx, p, models.TaskFilter{}, page)
}

// Search returns the caller's tasks whose title or description contains
// keyword, ignoring case. Wildcard characters in keyword match literally.
func (s *TaskService) Search(ctx context.Context, p models.Principal, keyword string, page models.PageRequest) (*models.Page[models.Task], error) {
	return s.list(ctx, p, models.TaskFilter{Keyword: &keyword}, page)
}

// FilterByCompletion returns the caller's tasks with the given completion status.
func (s *TaskService) FilterByCompletion(ctx context.Context, p models.Principal, completed bool, page models.PageRequest) (*models.Page[models.Task], error) {
	return s.list(ctx, p, models.TaskFilter{Completed: &completed}, page)
}

// SetCompletion marks task id completed or not completed.
func (s *TaskService) SetCompletion(ctx context.Context, p models.Principal, id int64, completed bool) error {
	ownerID, err := s.resolveOwner(ctx, p)
	if err != nil {
		return err
	}
	if err := s.repomanager.Tasks(s.repomanager.Conn()).SetCompleted(ctx, id, ownerID, completed); err != nil {
		return taskErr(err, "error updating task")
	}
	return nil
}

func (s *TaskService) list(ctx context.Context, p models.Principal, filter models.TaskFilter, page models.PageRequest) (*models.Page[models.Task], error) {
	ownerID, err := s.resolveOwner(ctx, p)
	if err != nil {
		return nil, err
	}
	items, total, err := s.repomanager.Tasks(s.repomanager.Conn()).List(ctx, ownerID, filter, page)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return models.NewPage(items, page, total), nil
}

// resolveOwner looks the caller up by email on every call, so a token that
// outlives its identity is refused.
func (s *TaskService) resolveOwner(ctx context.Context, p models.Principal) (int64, error) {
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrIdentityNotFound
		}
		return 0, fmt.Errorf("error looking up user: %w", err)
	}
	// email was reassigned to a different identity
	if p.UserID != 0 && p.UserID != user.ID {
		return 0, common.ErrIdentityNotFound
	}
	return user.ID, nil
}

func taskErr(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
