package match

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/talentlink/matchengine/internal/jobs"
	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

// RunHandler returns the background-job handler for match.run_batch jobs.
// It loads the recorded run, executes it with the active config, and stores
// the outcome on the run record. A batch with failed pairs still completes;
// only a failure of the whole run marks the job as failed for retry.
func RunHandler(runner *Runner, runs repository.RunRepo, configs repository.ConfigRepo, logger *slog.Logger) jobs.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *jobs.Job) error {
		var payload jobs.RunBatchPayload
		if err := json.Unmarshal(j.Payload, &payload); err != nil {
			return fmt.Errorf("decode run payload: %w", err)
		}

		run, err := runs.GetRun(ctx, payload.RunID)
		if err != nil {
			return fmt.Errorf("load run %d: %w", payload.RunID, err)
		}

		started := time.Now().UTC().Unix()
		run.Status = models.RunRunning
		run.StartedAt = &started
		if err := runs.UpdateRun(ctx, run); err != nil {
			return fmt.Errorf("mark run running: %w", err)
		}

		cfg, err := configs.GetActiveConfig(ctx, "")
		if err != nil {
			failRun(ctx, runs, run, err, logger)
			return fmt.Errorf("active config: %w", err)
		}

		outcome, err := runner.Run(ctx, BatchRequest{
			CandidateIDs: run.CandidateIDs,
			PositionIDs:  run.PositionIDs,
			MinScore:     run.MinScore,
			Limit:        run.Limit,
		}, cfg)
		if err != nil {
			failRun(ctx, runs, run, err, logger)
			return fmt.Errorf("run batch %d: %w", run.ID, err)
		}

		completed := time.Now().UTC().Unix()
		run.Status = models.RunCompleted
		run.TotalPairs = outcome.TotalPairs
		run.FailedPairs = outcome.FailedPairs
		run.TotalMatches = len(outcome.Results)
		run.CompletedAt = &completed
		if err := runs.UpdateRun(ctx, run); err != nil {
			return fmt.Errorf("mark run completed: %w", err)
		}

		logger.Info("batch run completed", "run_id", run.ID, "pairs", run.TotalPairs, "failed", run.FailedPairs, "matches", run.TotalMatches)
		return nil
	}
}

func failRun(ctx context.Context, runs repository.RunRepo, run *models.MatchRun, cause error, logger *slog.Logger) {
	completed := time.Now().UTC().Unix()
	run.Status = models.RunFailed
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &completed
	if err := runs.UpdateRun(ctx, run); err != nil {
		logger.Error("mark run failed", "run_id", run.ID, "err", err)
	}
}
