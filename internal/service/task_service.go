package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/benisnotitdog/task-manager-api/internal/domain"
	"github.com/benisnotitdog/task-manager-api/internal/logger"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	MaxPageLimit      = 100
)

// TaskService is the single entry point to task storage. Every call is
// scoped to the authenticated owner.
type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", fmt.Errorf("%w: title must be at most %d characters", domain.ErrValidation, maxTitleLen)
	}
	return title, nil
}

func validateDescription(d *string) error {
	if d != nil && utf8.RuneCountInString(*d) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, maxDescriptionLen)
	}
	return nil
}

func checkOwner(userID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, userID int64, title string, description *string) (*domain.Task, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	t := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      domain.TaskStatusPending,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Debug("task created", "user_id", userID, "task_id", t.ID)
	return t, nil
}

func (s *TaskService) List(ctx context.Context, userID int64, page domain.Page) ([]*domain.Task, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	if page.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrValidation)
	}
	if page.Limit < 0 || page.Limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, MaxPageLimit)
	}
	return s.tasks.ListByUser(ctx, userID, page)
}

func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, userID, taskID)
}

// Update applies a partial update. An empty patch returns the task unchanged.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, patch domain.TaskPatch) (*domain.Task, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if err := validateDescription(patch.Description); err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *patch.Status)
	}

	if patch.Empty() {
		return s.tasks.GetByID(ctx, userID, taskID)
	}

	t, err := s.tasks.Update(ctx, userID, taskID, patch)
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Debug("task updated", "user_id", userID, "task_id", taskID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if err := checkOwner(userID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	logger.WithContext(ctx).Debug("task deleted", "user_id", userID, "task_id", taskID)
	return nil
}
