package store

import (
	"context"
	"errors"
	"time"

	"github.com/BuzzLyutic/todo-tracker/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Store is the structural persistence port for projects and tasks.
// Implementations keep container semantics only; business rules
// (limits, uniqueness, field validation) live in the service layer.
// Listings preserve insertion order.
type Store interface {
	AddProject(ctx context.Context, p model.Project) (model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id int64) (model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) (model.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	CountProjects(ctx context.Context) (int, error)

	AddTask(ctx context.Context, t model.Task) (model.Task, error)
	ListTasks(ctx context.Context, projectID int64) ([]model.Task, error)
	ListAllTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, projectID, taskID int64) (model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, projectID, taskID int64) error
	CountTasks(ctx context.Context, projectID int64) (int, error)

	ListOverdueTasks(ctx context.Context, today time.Time) ([]model.Task, error)
	// CloseTask marks a task done and stamps closed_at, touching no
	// other fields. Returns ErrNotFound when the task is missing or
	// already done.
	CloseTask(ctx context.Context, projectID, taskID int64, closedAt time.Time) error
}
