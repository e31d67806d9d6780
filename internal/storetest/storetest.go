// Package storetest provides in-memory user and task stores that follow the
// Postgres repositories' semantics: unique usernames, owner-scoped task
// lookups and cascading user deletion.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benisnotitdog/task-manager-api/internal/domain"
)

type Store struct {
	mu         sync.Mutex
	users      map[int64]domain.User
	tasks      map[int64]domain.Task
	nextUserID int64
	nextTaskID int64
	now        func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

func New() *Store {
	return &Store{
		users: make(map[int64]domain.User),
		tasks: make(map[int64]domain.Task),
		now:   time.Now,
	}
}

func (s *Store) Users() *Users { return &Users{s: s} }
func (s *Store) Tasks() *Tasks { return &Tasks{s: s} }

// TaskCount returns the number of stored tasks across all owners.
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

type Users struct{ s *Store }

func (u *Users) Create(ctx context.Context, user *domain.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: username already taken", domain.ErrConflict)
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

func (u *Users) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, existing := range s.users {
		if existing.Username == username {
			out := existing
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (u *Users) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	existing, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &existing, nil
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	for tid, t := range s.tasks {
		if t.UserID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

type Tasks struct{ s *Store }

func (ts *Tasks) Create(ctx context.Context, t *domain.Task) error {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[t.UserID]; !ok {
		return fmt.Errorf("%w: owner does not exist", domain.ErrNotFound)
	}
	s.nextTaskID++
	now := s.now()
	t.ID = s.nextTaskID
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = copyTask(*t)
	return nil
}

func (ts *Tasks) ListByUser(ctx context.Context, userID int64, page domain.Page) ([]*domain.Task, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	res := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			c := copyTask(t)
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	if page.Offset >= len(res) {
		return res[:0], nil
	}
	res = res[page.Offset:]
	if page.Limit > 0 && page.Limit < len(res) {
		res = res[:page.Limit]
	}
	return res, nil
}

func (ts *Tasks) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c := copyTask(t)
	return &c, nil
}

func (ts *Tasks) Update(ctx context.Context, userID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	patch.Apply(&t)
	t.UpdatedAt = s.now()
	s.tasks[id] = copyTask(t)
	c := copyTask(t)
	return &c, nil
}

func (ts *Tasks) Delete(ctx context.Context, userID, id int64) error {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func copyTask(t domain.Task) domain.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}
