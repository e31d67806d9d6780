package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/benisnotitdog/task-manager-api/internal/domain"
	"github.com/benisnotitdog/task-manager-api/internal/storetest"
)

func strPtr(s string) *string { return &s }

func newTestTasks(t *testing.T) (*TaskService, int64, int64) {
	t.Helper()
	store := storetest.New()
	users := store.Users()
	alice := &domain.User{Username: "alice", PasswordHash: "x"}
	bob := &domain.User{Username: "bob", PasswordHash: "x"}
	if err := users.Create(context.Background(), alice); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if err := users.Create(context.Background(), bob); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	return NewTaskService(store.Tasks()), alice.ID, bob.ID
}

func TestTasks_CreateThenGet(t *testing.T) {
	svc, alice, _ := newTestTasks(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, "  buy milk ", strPtr("2 litres"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.TaskStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.Title != "buy milk" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}

	got, err := svc.Get(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.UserID != alice || got.Title != created.Title ||
		got.Status != created.Status || got.Description == nil || *got.Description != "2 litres" {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, created)
	}
}

func TestTasks_CreateValidation(t *testing.T) {
	svc, alice, _ := newTestTasks(t)
	ctx := context.Background()

	for _, title := range []string{"", "   ", strings.Repeat("t", 201)} {
		if _, err := svc.Create(ctx, alice, title, nil); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("title %q: expected ErrValidation, got %v", title, err)
		}
	}
	if _, err := svc.Create(ctx, alice, "ok", strPtr(strings.Repeat("d", 2001))); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for long description, got %v", err)
	}
	if _, err := svc.Create(ctx, 0, "ok", nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without owner, got %v", err)
	}
}

func TestTasks_OwnershipIsolation(t *testing.T) {
	svc, alice, bob := newTestTasks(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, bob, "bob's task", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, alice, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	title := "hijacked"
	if _, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{Title: &title}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty update: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, alice, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}

	list, err := svc.List(ctx, alice, domain.Page{})
	if err != nil || len(list) != 0 {
		t.Fatalf("alice should see no tasks: %v %v", list, err)
	}

	got, err := svc.Get(ctx, bob, task.ID)
	if err != nil || got.Title != "bob's task" {
		t.Fatalf("bob's task must be untouched: %+v %v", got, err)
	}
}

func TestTasks_MissingTask(t *testing.T) {
	svc, alice, _ := newTestTasks(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, alice, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, alice, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTasks_PartialUpdate(t *testing.T) {
	svc, alice, _ := newTestTasks(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, alice, "write report", strPtr("quarterly"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := domain.TaskStatusInProgress
	updated, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.TaskStatusInProgress || updated.Title != "write report" ||
		updated.Description == nil || *updated.Description != "quarterly" {
		t.Fatalf("unexpected partial update result: %+v", updated)
	}

	empty := ""
	if _, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{Title: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty title, got %v", err)
	}
	bogus := domain.TaskStatus("archived")
	if _, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{Status: &bogus}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}

	same, err := svc.Update(ctx, alice, task.ID, domain.TaskPatch{})
	if err != nil || same.Status != domain.TaskStatusInProgress {
		t.Fatalf("empty patch should return current task: %+v %v", same, err)
	}
}

func TestTasks_ListPagination(t *testing.T) {
	svc, alice, bob := newTestTasks(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c", "d"} {
		if _, err := svc.Create(ctx, alice, title, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, bob, "other", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.List(ctx, alice, domain.Page{})
	if err != nil || len(all) != 4 {
		t.Fatalf("expected 4 tasks, got %d (%v)", len(all), err)
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if all[i].Title != want {
			t.Fatalf("expected insertion order, got %q at %d", all[i].Title, i)
		}
	}

	page, err := svc.List(ctx, alice, domain.Page{Offset: 1, Limit: 2})
	if err != nil || len(page) != 2 || page[0].Title != "b" || page[1].Title != "c" {
		t.Fatalf("unexpected page: %v %v", page, err)
	}

	past, err := svc.List(ctx, alice, domain.Page{Offset: 10})
	if err != nil || len(past) != 0 {
		t.Fatalf("expected empty page, got %v %v", past, err)
	}

	for _, p := range []domain.Page{{Offset: -1}, {Limit: -1}, {Limit: MaxPageLimit + 1}} {
		if _, err := svc.List(ctx, alice, p); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("page %+v: expected ErrValidation, got %v", p, err)
		}
	}
}
