package store

import (
	"context"
	"sync"
	"time"

	"github.com/BuzzLyutic/todo-tracker/internal/model"
)

// MemoryStore keeps projects and their tasks in process memory.
// Identifiers are assigned from monotonically increasing counters and
// stay stable across deletions. All methods are safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	projects      []model.Project
	tasks         map[int64][]model.Task // project id -> tasks, insertion order
	nextProjectID int64
	nextTaskID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[int64][]model.Task),
	}
}

func (s *MemoryStore) AddProject(_ context.Context, p model.Project) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProjectID++
	now := time.Now().UTC()
	p.ID = s.nextProjectID
	p.CreatedAt = now
	p.UpdatedAt = now
	s.projects = append(s.projects, p)
	s.tasks[p.ID] = nil
	return p, nil
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out, nil
}

func (s *MemoryStore) GetProject(_ context.Context, id int64) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.projectIndex(id); i >= 0 {
		return s.projects[i], nil
	}
	return model.Project{}, ErrNotFound
}

func (s *MemoryStore) UpdateProject(_ context.Context, p model.Project) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(p.ID)
	if i < 0 {
		return model.Project{}, ErrNotFound
	}
	cur := s.projects[i]
	cur.Name = p.Name
	cur.Description = p.Description
	cur.UpdatedAt = time.Now().UTC()
	s.projects[i] = cur
	return cur, nil
}

func (s *MemoryStore) DeleteProject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	delete(s.tasks, id) // cascade
	return nil
}

func (s *MemoryStore) CountProjects(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects), nil
}

func (s *MemoryStore) AddTask(_ context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectIndex(t.ProjectID) < 0 {
		return model.Task{}, ErrNotFound
	}
	s.nextTaskID++
	now := time.Now().UTC()
	t.ID = s.nextTaskID
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ProjectID] = append(s.tasks[t.ProjectID], cloneTask(t))
	return t, nil
}

func (s *MemoryStore) ListTasks(_ context.Context, projectID int64) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.projectIndex(projectID) < 0 {
		return nil, ErrNotFound
	}
	out := make([]model.Task, 0, len(s.tasks[projectID]))
	for _, t := range s.tasks[projectID] {
		out = append(out, cloneTask(t))
	}
	return out, nil
}

func (s *MemoryStore) ListAllTasks(_ context.Context) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Task
	for _, p := range s.projects {
		for _, t := range s.tasks[p.ID] {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (s *MemoryStore) GetTask(_ context.Context, projectID, taskID int64) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.taskIndex(projectID, taskID); i >= 0 {
		return cloneTask(s.tasks[projectID][i]), nil
	}
	return model.Task{}, ErrNotFound
}

func (s *MemoryStore) UpdateTask(_ context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(t.ProjectID, t.ID)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	cur := s.tasks[t.ProjectID][i]
	cur.Name = t.Name
	cur.Description = t.Description
	cur.Status = t.Status
	cur.Deadline = t.Deadline
	cur.ClosedAt = t.ClosedAt
	cur.UpdatedAt = time.Now().UTC()
	s.tasks[t.ProjectID][i] = cloneTask(cur)
	return cur, nil
}

func (s *MemoryStore) CloseTask(_ context.Context, projectID, taskID int64, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(projectID, taskID)
	if i < 0 || s.tasks[projectID][i].Status == model.StatusDone {
		return ErrNotFound
	}
	cur := s.tasks[projectID][i]
	cur.Status = model.StatusDone
	cur.ClosedAt = &closedAt
	cur.UpdatedAt = time.Now().UTC()
	s.tasks[projectID][i] = cur
	return nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, projectID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(projectID, taskID)
	if i < 0 {
		return ErrNotFound
	}
	s.tasks[projectID] = append(s.tasks[projectID][:i], s.tasks[projectID][i+1:]...)
	return nil
}

func (s *MemoryStore) CountTasks(_ context.Context, projectID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.projectIndex(projectID) < 0 {
		return 0, ErrNotFound
	}
	return len(s.tasks[projectID]), nil
}

func (s *MemoryStore) ListOverdueTasks(_ context.Context, today time.Time) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Task
	for _, p := range s.projects {
		for _, t := range s.tasks[p.ID] {
			if t.Deadline != nil && t.Deadline.Before(today) && t.Status != model.StatusDone {
				out = append(out, cloneTask(t))
			}
		}
	}
	return out, nil
}

// cloneTask detaches the pointer fields so callers can never write
// into store state through a returned task.
func cloneTask(t model.Task) model.Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	if t.ClosedAt != nil {
		ts := *t.ClosedAt
		t.ClosedAt = &ts
	}
	return t
}

// callers must hold s.mu
func (s *MemoryStore) projectIndex(id int64) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) taskIndex(projectID, taskID int64) int {
	for i, t := range s.tasks[projectID] {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}
