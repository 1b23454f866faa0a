package jobs_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	migrations "github.com/talentlink/matchengine/db"
	"github.com/talentlink/matchengine/internal/db"
	"github.com/talentlink/matchengine/internal/jobs"
)

func setupQueue(t *testing.T) *jobs.Repository {
	t.Helper()
	ctx := context.Background()

	d, err := db.New(ctx, filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, migrations.Migrations); err != nil {
		t.Fatalf("db.Migrate: %v", err)
	}

	return jobs.NewRepository(d)
}

func TestEnqueueAndProcess(t *testing.T) {
	ctx := context.Background()
	repo := setupQueue(t)

	handled := make(chan struct{}, 1)
	handlers := map[string]jobs.Handler{
		"test": func(ctx context.Context, j *jobs.Job) error {
			handled <- struct{}{}
			return nil
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, nil, 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test", map[string]string{"foo": "bar"}, 10, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-handled:
		// ok
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}
}

func TestFailingJobMovesToDeadLetter(t *testing.T) {
	ctx := context.Background()
	repo := setupQueue(t)

	attempts := make(chan struct{}, 8)
	handlers := map[string]jobs.Handler{
		"flaky": func(ctx context.Context, j *jobs.Job) error {
			attempts <- struct{}{}
			return errors.New("always fails")
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, nil, 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "flaky", nil, 10, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-attempts:
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := repo.FetchNext(ctx)
		if err != nil {
			t.Fatalf("FetchNext: %v", err)
		}
		if job == nil {
			return // moved out of the queue
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("failed job was not removed from the queue")
}

func TestBackoffDuration(t *testing.T) {
	if jobs.BackoffDuration(1) >= jobs.BackoffDuration(3) {
		t.Fatalf("backoff should grow with attempts")
	}
	if jobs.BackoffDuration(100) > 5*time.Minute {
		t.Fatalf("backoff must be capped at 5 minutes, got %v", jobs.BackoffDuration(100))
	}
}
