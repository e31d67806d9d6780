package service

import (
	"context"

	"github.com/benisnotitdog/task-manager-api/internal/domain"
)

// UserStore persists user records. Implementations return domain.ErrConflict
// for a taken username and domain.ErrNotFound for a missing user.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// TaskStore persists tasks. Every lookup is keyed by owner and id; a task
// owned by another user is reported as domain.ErrNotFound.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	ListByUser(ctx context.Context, userID int64, page domain.Page) ([]*domain.Task, error)
	GetByID(ctx context.Context, userID, id int64) (*domain.Task, error)
	Update(ctx context.Context, userID, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}
