package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

const taskColumns = `id, user_id, title, description, due_date, priority, completed, created_at, updated_at`

var orderExpr = map[models.SortField]string{
	models.SortByID:          "id",
	models.SortByTitle:       "title",
	models.SortByDescription: "description",
	models.SortByDueDate:     "due_date",
	models.SortByPriority:    "CASE priority WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'HIGH' THEN 3 END",
	models.SortByCompleted:   "completed",
}

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO todos (user_id, title, description, due_date, priority, completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.Title, task.Description, task.DueDate, string(task.Priority), task.Completed,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	return scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM todos WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE todos SET
			title = $1,
			description = $2,
			due_date = $3,
			priority = $4,
			completed = $5,
			updated_at = now()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.DueDate, string(task.Priority), task.Completed, task.ID, task.OwnerID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) SetCompleted(ctx context.Context, id, ownerID int64, completed bool) error {
	query := `UPDATE todos SET completed = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	res, err := r.db.ExecContext(ctx, query, completed, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) List(ctx context.Context, ownerID int64, filter models.TaskFilter, page models.PageRequest) ([]models.Task, int64, error) {
	where, args := buildWhere(ownerID, filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	if total == 0 || int64(page.Offset()) >= total {
		return []models.Task{}, total, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM todos WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, orderBy(page), len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	result := make([]models.Task, 0, page.Size)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// buildWhere always starts with the owner predicate so that every OR branch
// added afterwards stays inside it.
func buildWhere(ownerID int64, filter models.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{ownerID}

	if filter.Keyword != nil {
		args = append(args, likePattern(*filter.Keyword))
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

func orderBy(page models.PageRequest) string {
	expr, ok := orderExpr[page.Sort]
	if !ok {
		expr = orderExpr[models.SortByID]
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	if page.Sort == models.SortByID || !ok {
		return "id " + dir
	}
	return expr + " " + dir + ", id ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns keyword into a substring pattern with LIKE wildcards
// in keyword matched literally.
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		t        models.Task
		desc     sql.NullString
		due      sql.NullTime
		priority string
	)
	err := s.Scan(&t.ID, &t.OwnerID, &t.Title, &desc, &due, &priority, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	t.Priority = models.Priority(priority)
	return &t, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
