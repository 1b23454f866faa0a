package jobs

import (
	"context"
	"encoding/json"
	"time"
)

// Job represents a background job
type Job struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

// Handler is the function that processes a job
type Handler func(ctx context.Context, j *Job) error

// TypeRunBatch is the job type that executes a recorded batch match run.
const TypeRunBatch = "match.run_batch"

// RunBatchPayload is the payload for TypeRunBatch jobs.
type RunBatchPayload struct {
	RunID int64 `json:"run_id"`
}

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}
