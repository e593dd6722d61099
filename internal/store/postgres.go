package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-tracker/internal/model"
)

const (
	projectColumns = "id, name, description, created_at, updated_at"
	taskColumns    = "id, project_id, name, description, status, deadline, closed_at, created_at, updated_at"
)

// PostgresStore persists projects and tasks in PostgreSQL. The schema
// backs the service-level invariants with unique indexes on names and
// an ON DELETE CASCADE foreign key from tasks to projects.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) AddProject(ctx context.Context, p model.Project) (model.Project, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO projects (name, description)
		VALUES ($1, $2)
		RETURNING `+projectColumns,
		p.Name, p.Description)
	return scanProject(row)
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) GetProject(ctx context.Context, id int64) (model.Project, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, id)
	return scanProject(row)
}

func (s *PostgresStore) UpdateProject(ctx context.Context, p model.Project) (model.Project, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE projects
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+projectColumns,
		p.ID, p.Name, p.Description)
	return scanProject(row)
}

func (s *PostgresStore) DeleteProject(ctx context.Context, id int64) error {
	// child tasks go with the project via ON DELETE CASCADE
	cmd, err := s.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountProjects(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM projects").Scan(&n)
	return n, err
}

func (s *PostgresStore) AddTask(ctx context.Context, t model.Task) (model.Task, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, name, description, status, deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		t.ProjectID, t.Name, t.Description, t.Status, deadlineArg(t.Deadline))
	return scanTask(row)
}

func (s *PostgresStore) ListTasks(ctx context.Context, projectID int64) ([]model.Task, error) {
	// repeatable read keeps the existence check and the listing on one
	// snapshot, so a concurrent project delete cannot turn a missing
	// project into an empty list
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := requireProject(ctx, tx, projectID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	return tasks, tx.Commit(ctx)
}

func (s *PostgresStore) ListAllTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks ORDER BY project_id, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *PostgresStore) GetTask(ctx context.Context, projectID, taskID int64) (model.Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 AND id = $2
	`, projectID, taskID)
	return scanTask(row)
}

func (s *PostgresStore) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET name = $3, description = $4, status = $5, deadline = $6, closed_at = $7, updated_at = now()
		WHERE project_id = $1 AND id = $2
		RETURNING `+taskColumns,
		t.ProjectID, t.ID, t.Name, t.Description, t.Status, deadlineArg(t.Deadline), t.ClosedAt)
	return scanTask(row)
}

func (s *PostgresStore) DeleteTask(ctx context.Context, projectID, taskID int64) error {
	cmd, err := s.pool.Exec(ctx, "DELETE FROM tasks WHERE project_id = $1 AND id = $2", projectID, taskID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountTasks(ctx context.Context, projectID int64) (int, error) {
	// the join resolves project existence and the count in one
	// statement: no rows means no project
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(t.id)
		FROM projects p
		LEFT JOIN tasks t ON t.project_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`, projectID).Scan(&n)
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (s *PostgresStore) ListOverdueTasks(ctx context.Context, today time.Time) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE deadline IS NOT NULL AND deadline < $1::date AND status <> 'done'
		ORDER BY id
	`, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *PostgresStore) CloseTask(ctx context.Context, projectID, taskID int64, closedAt time.Time) error {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE tasks
		SET status = 'done', closed_at = $3, updated_at = now()
		WHERE project_id = $1 AND id = $2 AND status <> 'done'
	`, projectID, taskID, closedAt)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func requireProject(ctx context.Context, q querier, projectID int64) error {
	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)", projectID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, mapError(err)
	}
	return p, nil
}

func scanTask(row rowScanner) (model.Task, error) {
	var t model.Task
	var deadline *time.Time
	err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.Status,
		&deadline, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, mapError(err)
	}
	if deadline != nil {
		d := model.DateOf(*deadline)
		t.Deadline = &d
	}
	return t, nil
}

func collectTasks(rows pgx.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func deadlineArg(d *model.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique violation
			return ErrConflict
		case "23503": // missing parent project
			return ErrNotFound
		}
	}
	return err
}
