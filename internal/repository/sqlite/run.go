package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

func (r *SQLiteRepo) CreateRun(ctx context.Context, run *models.MatchRun) (int64, error) {
	if run == nil {
		return 0, fmt.Errorf("run is nil")
	}
	if run.Status == "" {
		run.Status = models.RunPending
	}

	cids, err := json.Marshal(run.CandidateIDs)
	if err != nil {
		return 0, wrap("marshal candidate ids", err)
	}
	pids, err := json.Marshal(run.PositionIDs)
	if err != nil {
		return 0, wrap("marshal position ids", err)
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO match_runs (name, status, candidate_ids, position_ids, min_score, result_limit, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Name, run.Status, string(cids), string(pids), run.MinScore, run.Limit, now())
	if err != nil {
		return 0, wrap("create run", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) UpdateRun(ctx context.Context, run *models.MatchRun) error {
	if run == nil {
		return fmt.Errorf("run is nil")
	}

	var started, completed any
	if run.StartedAt != nil {
		started = *run.StartedAt
	}
	if run.CompletedAt != nil {
		completed = *run.CompletedAt
	}
	_, err := r.conn.Exec(ctx,
		`UPDATE match_runs SET status = ?, total_pairs = ?, failed_pairs = ?, total_matches = ?, error_message = ?, started_at = ?, completed_at = ? WHERE id = ?`,
		run.Status, run.TotalPairs, run.FailedPairs, run.TotalMatches, run.ErrorMessage, started, completed, run.ID)
	if err != nil {
		return wrap("update run", err)
	}
	return nil
}

func (r *SQLiteRepo) GetRun(ctx context.Context, id int64) (*models.MatchRun, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, name, status, candidate_ids, position_ids, min_score, result_limit, total_pairs, failed_pairs, total_matches, error_message, created, started_at, completed_at FROM match_runs WHERE id = ?`, id)

	var run models.MatchRun
	var cids, pids string
	var started, completed sql.NullInt64
	if err := row.Scan(&run.ID, &run.Name, &run.Status, &cids, &pids, &run.MinScore, &run.Limit, &run.TotalPairs, &run.FailedPairs, &run.TotalMatches, &run.ErrorMessage, &run.Created, &started, &completed); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match run %d: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(cids), &run.CandidateIDs); err != nil {
		return nil, wrap("unmarshal candidate ids", err)
	}
	if err := json.Unmarshal([]byte(pids), &run.PositionIDs); err != nil {
		return nil, wrap("unmarshal position ids", err)
	}
	if started.Valid {
		run.StartedAt = &started.Int64
	}
	if completed.Valid {
		run.CompletedAt = &completed.Int64
	}
	return &run, nil
}
