package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/todo-tracker/internal/service"
	"github.com/BuzzLyutic/todo-tracker/internal/store"
)

func TestConcurrent_ProjectLimitHolds(t *testing.T) {
	pool, cleanup := SetupTestDB(t)
	defer cleanup()
	TruncateTables(t, pool)

	const limit = 10
	svc := service.NewTodoService(store.NewPostgresStore(pool), limit, 50)
	ctx := context.Background()

	const goroutines = 25
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	// Fire more concurrent creates than the cap allows
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.CreateProject(ctx, fmt.Sprintf("Project %d", idx), "")
		}(i)
	}

	wg.Wait()

	created := 0
	limited := 0
	for i, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrProjectLimit):
			limited++
		default:
			t.Errorf("unexpected error at %d: %v", i, err)
		}
	}

	assert.Equal(t, limit, created, "exactly the cap should be admitted")
	assert.Equal(t, goroutines-limit, limited)

	var count int
	pool.QueryRow(ctx, "SELECT count(*) FROM projects").Scan(&count)
	assert.Equal(t, limit, count)
}

func TestConcurrent_DuplicateNameAdmitsOne(t *testing.T) {
	pool, cleanup := SetupTestDB(t)
	defer cleanup()
	TruncateTables(t, pool)

	svc := service.NewTodoService(store.NewPostgresStore(pool), 10, 50)
	ctx := context.Background()

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.CreateProject(ctx, "Website", "")
		}(i)
	}

	wg.Wait()

	created := 0
	duplicates := 0
	for i, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrDuplicateProject):
			duplicates++
		default:
			t.Errorf("unexpected error at %d: %v", i, err)
		}
	}

	assert.Equal(t, 1, created, "exactly one creation should win")
	assert.Equal(t, goroutines-1, duplicates)
}

func TestConcurrent_TaskCreatesAndReads(t *testing.T) {
	pool, cleanup := SetupTestDB(t)
	defer cleanup()
	TruncateTables(t, pool)

	svc := service.NewTodoService(store.NewPostgresStore(pool), 10, 50)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Website", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	const creators = 5
	const readers = 5

	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				svc.CreateTask(ctx, project.ID, fmt.Sprintf("Task %d-%d", idx, j), "", "", "")
			}
		}(i)
	}

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				svc.ListTasks(ctx, project.ID)
			}
		}()
	}

	wg.Wait()

	tasks, err := svc.ListTasks(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, creators*5, "all distinct names fit under the cap")
}
