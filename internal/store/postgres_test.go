// internal/store/postgres_test.go
package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-tracker/internal/model"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatal(err)
	}

	// Очистка
	pool.Exec(context.Background(), "TRUNCATE tasks, projects RESTART IDENTITY CASCADE")

	return pool
}

func TestPostgresStore_AddProject(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	s := NewPostgresStore(pool)
	created, err := s.AddProject(context.Background(), model.Project{Name: "Website", Description: "Launch site"})
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if created.Name != "Website" {
		t.Errorf("expected name=Website, got %s", created.Name)
	}
}

func TestPostgresStore_DuplicateNameConflict(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	s := NewPostgresStore(pool)
	ctx := context.Background()

	if _, err := s.AddProject(ctx, model.Project{Name: "Website"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.AddProject(ctx, model.Project{Name: "Website"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestPostgresStore_TaskCRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	s := NewPostgresStore(pool)
	ctx := context.Background()

	p, err := s.AddProject(ctx, model.Project{Name: "Website"})
	if err != nil {
		t.Fatal(err)
	}

	deadline := model.DateOf(time.Now().AddDate(0, 0, 7))
	task, err := s.AddTask(ctx, model.Task{
		ProjectID: p.ID,
		Name:      "Write copy",
		Status:    model.StatusTodo,
		Deadline:  &deadline,
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.ID == 0 {
		t.Error("expected non-zero task ID")
	}
	if task.Deadline == nil || task.Deadline.String() != deadline.String() {
		t.Errorf("expected deadline %s, got %v", deadline, task.Deadline)
	}

	fetched, err := s.GetTask(ctx, p.ID, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Name != "Write copy" {
		t.Errorf("expected name=Write copy, got %s", fetched.Name)
	}

	fetched.Status = model.StatusDone
	updated, err := s.UpdateTask(ctx, fetched)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != model.StatusDone {
		t.Errorf("expected status=done, got %s", updated.Status)
	}

	if err := s.DeleteTask(ctx, p.ID, task.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTask(ctx, p.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresStore_AddTaskMissingProject(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	s := NewPostgresStore(pool)
	_, err := s.AddTask(context.Background(), model.Task{ProjectID: 9999, Name: "Orphan", Status: model.StatusTodo})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing project, got %v", err)
	}
	if _, err := s.CountTasks(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound counting tasks of missing project, got %v", err)
	}
}

func TestPostgresStore_CascadeDelete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	s := NewPostgresStore(pool)
	ctx := context.Background()

	p, err := s.AddProject(ctx, model.Project{Name: "Website"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTask(ctx, model.Task{ProjectID: p.ID, Name: "Write copy", Status: model.StatusTodo}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	var count int
	pool.QueryRow(ctx, "SELECT count(*) FROM tasks").Scan(&count)
	if count != 0 {
		t.Errorf("expected cascade to remove tasks, %d left", count)
	}
	if _, err := s.ListTasks(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresStore_ListOverdueTasks(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	s := NewPostgresStore(pool)
	ctx := context.Background()

	p, err := s.AddProject(ctx, model.Project{Name: "Website"})
	if err != nil {
		t.Fatal(err)
	}

	// insert directly: the past deadline could not pass service validation
	_, err = pool.Exec(ctx, `
		INSERT INTO tasks (project_id, name, status, deadline)
		VALUES ($1, 'Overdue', 'todo', now()::date - 3)
	`, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	overdue, err := s.ListOverdueTasks(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(overdue) != 1 {
		t.Fatalf("expected 1 overdue task, got %d", len(overdue))
	}
	if overdue[0].Name != "Overdue" {
		t.Errorf("unexpected task %q", overdue[0].Name)
	}
}

func TestPostgresStore_CloseTask(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	s := NewPostgresStore(pool)
	ctx := context.Background()

	p, err := s.AddProject(ctx, model.Project{Name: "Website"})
	if err != nil {
		t.Fatal(err)
	}
	task, err := s.AddTask(ctx, model.Task{ProjectID: p.ID, Name: "Write copy", Description: "draft", Status: model.StatusDoing})
	if err != nil {
		t.Fatal(err)
	}

	closedAt := time.Now().UTC()
	if err := s.CloseTask(ctx, p.ID, task.ID, closedAt); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTask(ctx, p.ID, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusDone {
		t.Errorf("expected status=done, got %s", got.Status)
	}
	if got.ClosedAt == nil {
		t.Fatal("expected closed_at to be set")
	}
	if got.Description != "draft" {
		t.Errorf("closing must not touch other fields, description=%q", got.Description)
	}

	// a second close finds nothing to do
	if err := s.CloseTask(ctx, p.ID, task.ID, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for already-done task, got %v", err)
	}
	if err := s.CloseTask(ctx, p.ID, 9999, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing task, got %v", err)
	}
}
