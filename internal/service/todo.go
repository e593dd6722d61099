package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BuzzLyutic/todo-tracker/internal/model"
	"github.com/BuzzLyutic/todo-tracker/internal/store"
)

// TodoService enforces every business rule — field validation, capacity
// limits, name uniqueness, parent existence — before delegating the
// structural mutation to the store. Capacity and uniqueness checks are
// check-then-act, so each mutating operation runs under one mutex.
type TodoService struct {
	store              store.Store
	maxProjects        int
	maxTasksPerProject int

	mu sync.Mutex
}

func NewTodoService(st store.Store, maxProjects, maxTasksPerProject int) *TodoService {
	return &TodoService{
		store:              st,
		maxProjects:        maxProjects,
		maxTasksPerProject: maxTasksPerProject,
	}
}

func (s *TodoService) CreateProject(ctx context.Context, name, description string) (model.Project, error) {
	if err := validateName(name); err != nil {
		return model.Project{}, err
	}
	if err := validateDescription(description); err != nil {
		return model.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.CountProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	if count >= s.maxProjects {
		return model.Project{}, fmt.Errorf("%w: at most %d projects", ErrProjectLimit, s.maxProjects)
	}

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	if projectNameTaken(projects, name, 0) {
		return model.Project{}, fmt.Errorf("%w: %q", ErrDuplicateProject, name)
	}

	created, err := s.store.AddProject(ctx, model.Project{Name: name, Description: description})
	if err != nil {
		return model.Project{}, projectErr(err)
	}
	return created, nil
}

func (s *TodoService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.store.ListProjects(ctx)
}

func (s *TodoService) GetProject(ctx context.Context, id int64) (model.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return model.Project{}, projectErr(err)
	}
	return p, nil
}

func (s *TodoService) EditProject(ctx context.Context, id int64, newName, newDescription string) (model.Project, error) {
	if err := validateName(newName); err != nil {
		return model.Project{}, err
	}
	if err := validateDescription(newDescription); err != nil {
		return model.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetProject(ctx, id); err != nil {
		return model.Project{}, projectErr(err)
	}

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	if projectNameTaken(projects, newName, id) {
		return model.Project{}, fmt.Errorf("%w: %q", ErrDuplicateProject, newName)
	}

	updated, err := s.store.UpdateProject(ctx, model.Project{ID: id, Name: newName, Description: newDescription})
	if err != nil {
		return model.Project{}, projectErr(err)
	}
	return updated, nil
}

// DeleteProject removes the project and, with it, every task it owns.
func (s *TodoService) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteProject(ctx, id); err != nil {
		return projectErr(err)
	}
	return nil
}

func (s *TodoService) CreateTask(ctx context.Context, projectID int64, name, description, status, deadline string) (model.Task, error) {
	if err := validateName(name); err != nil {
		return model.Task{}, err
	}
	if err := validateDescription(description); err != nil {
		return model.Task{}, err
	}
	normalized, err := normalizeStatus(status)
	if err != nil {
		return model.Task{}, err
	}
	due, err := parseDeadline(deadline)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.CountTasks(ctx, projectID)
	if err != nil {
		return model.Task{}, projectErr(err)
	}
	if count >= s.maxTasksPerProject {
		return model.Task{}, fmt.Errorf("%w: at most %d tasks per project", ErrTaskLimit, s.maxTasksPerProject)
	}

	siblings, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return model.Task{}, projectErr(err)
	}
	if taskNameTaken(siblings, name, 0) {
		return model.Task{}, fmt.Errorf("%w: %q", ErrDuplicateTask, name)
	}

	created, err := s.store.AddTask(ctx, model.Task{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		Status:      normalized,
		Deadline:    due,
	})
	if err != nil {
		return model.Task{}, taskErr(err, ErrProjectNotFound)
	}
	return created, nil
}

func (s *TodoService) ListTasks(ctx context.Context, projectID int64) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return nil, projectErr(err)
	}
	return tasks, nil
}

// ListAllTasks returns tasks across every project; grouping them for
// display is the caller's concern.
func (s *TodoService) ListAllTasks(ctx context.Context) ([]model.Task, error) {
	return s.store.ListAllTasks(ctx)
}

func (s *TodoService) GetTask(ctx context.Context, projectID, taskID int64) (model.Task, error) {
	t, err := s.store.GetTask(ctx, projectID, taskID)
	if err != nil {
		return model.Task{}, taskErr(err, ErrTaskNotFound)
	}
	return t, nil
}

func (s *TodoService) EditTask(ctx context.Context, projectID, taskID int64, newName, newDescription, newStatus, newDeadline string) (model.Task, error) {
	if err := validateName(newName); err != nil {
		return model.Task{}, err
	}
	if err := validateDescription(newDescription); err != nil {
		return model.Task{}, err
	}
	normalized, err := normalizeStatus(newStatus)
	if err != nil {
		return model.Task{}, err
	}
	due, err := parseDeadline(newDeadline)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.GetTask(ctx, projectID, taskID)
	if err != nil {
		return model.Task{}, taskErr(err, ErrTaskNotFound)
	}

	siblings, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return model.Task{}, projectErr(err)
	}
	if taskNameTaken(siblings, newName, taskID) {
		return model.Task{}, fmt.Errorf("%w: %q", ErrDuplicateTask, newName)
	}

	cur.Name = newName
	cur.Description = newDescription
	cur.Status = normalized
	cur.Deadline = due

	updated, err := s.store.UpdateTask(ctx, cur)
	if err != nil {
		return model.Task{}, taskErr(err, ErrTaskNotFound)
	}
	return updated, nil
}

// EditTaskStatus updates only the status; name, description and
// deadline are left untouched.
func (s *TodoService) EditTaskStatus(ctx context.Context, projectID, taskID int64, newStatus string) (model.Task, error) {
	normalized, err := normalizeStatus(newStatus)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.GetTask(ctx, projectID, taskID)
	if err != nil {
		return model.Task{}, taskErr(err, ErrTaskNotFound)
	}

	cur.Status = normalized
	updated, err := s.store.UpdateTask(ctx, cur)
	if err != nil {
		return model.Task{}, taskErr(err, ErrTaskNotFound)
	}
	return updated, nil
}

func (s *TodoService) DeleteTask(ctx context.Context, projectID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteTask(ctx, projectID, taskID); err != nil {
		return taskErr(err, ErrTaskNotFound)
	}
	return nil
}

// projectErr translates structural store errors raised while addressing
// a project.
func projectErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrProjectNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrDuplicateProject
	}
	return err
}

// taskErr translates structural store errors raised by task operations;
// notFound names the entity that was actually missing (the parent
// project on insert, the task itself otherwise).
func taskErr(err error, notFound error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrConflict):
		return ErrDuplicateTask
	}
	return err
}
