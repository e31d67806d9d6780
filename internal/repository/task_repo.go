package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/benisnotitdog/task-manager-api/internal/db"
	"github.com/benisnotitdog/task-manager-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository stores tasks. Every query that reads or mutates an existing
// task is filtered by owner, so a task owned by someone else looks exactly
// like a missing one.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, status, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.Title, t.Description, string(t.Status),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner does not exist", domain.ErrNotFound)
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListByUser returns the user's tasks in insertion order.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int64, page domain.Page) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id OFFSET $2`
	args := []any{userID, page.Offset}
	if page.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, page.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return res, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanTask(row)
}

// Update applies patch under a row lock in a single transaction.
func (r *TaskRepository) Update(ctx context.Context, userID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	var out *domain.Task
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		)
		t, err := scanTask(row)
		if err != nil {
			return err
		}

		patch.Apply(t)

		err = tx.QueryRow(ctx,
			`UPDATE tasks
			 SET title = $1, description = $2, status = $3, updated_at = NOW()
			 WHERE id = $4 AND user_id = $5
			 RETURNING updated_at`,
			t.Title, t.Description, string(t.Status), id, userID,
		).Scan(&t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}
