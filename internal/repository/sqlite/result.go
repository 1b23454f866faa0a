package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

// UpsertResult stores a match result keyed by (candidate_id, position_id).
// The row and its skill detail set are replaced in one transaction, so
// concurrent recomputation of the same pair is last-writer-wins with full
// replace semantics and never leaves merged detail sets behind.
func (r *SQLiteRepo) UpsertResult(ctx context.Context, m *models.MatchResult) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("match result is nil")
	}

	details, err := json.Marshal(m.Details)
	if err != nil {
		return 0, wrap("marshal details", err)
	}
	reasons, err := json.Marshal(m.RecommendationReasons)
	if err != nil {
		return 0, wrap("marshal reasons", err)
	}
	suggestions, err := json.Marshal(m.ImprovementSuggestions)
	if err != nil {
		return 0, wrap("marshal suggestions", err)
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	ts := now()
	var id int64
	row := tx.QueryRowContext(ctx,
		`INSERT INTO match_results (candidate_id, position_id, overall_score, skill_score, experience_score, education_score, location_score, details_json, reasons_json, suggestions_json, calculated_at, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(candidate_id, position_id) DO UPDATE SET
			overall_score=excluded.overall_score,
			skill_score=excluded.skill_score,
			experience_score=excluded.experience_score,
			education_score=excluded.education_score,
			location_score=excluded.location_score,
			details_json=excluded.details_json,
			reasons_json=excluded.reasons_json,
			suggestions_json=excluded.suggestions_json,
			analysis_json=NULL,
			updated=excluded.updated
		 RETURNING id`,
		m.CandidateID, m.PositionID, m.OverallScore, m.SkillScore, m.ExperienceScore, m.EducationScore, m.LocationScore,
		string(details), string(reasons), string(suggestions), ts, ts)
	if err := row.Scan(&id); err != nil {
		_ = tx.Rollback()
		return 0, wrap("upsert match result", err)
	}

	// detail rows are regenerated, never merged with stale ones
	if _, err := tx.ExecContext(ctx, `DELETE FROM skill_match_details WHERE result_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return 0, wrap("clear skill details", err)
	}
	for _, d := range m.SkillDetails {
		has, req, missing, bonus := 0, 0, 0, 0
		if d.CandidateHasSkill {
			has = 1
		}
		if d.Required {
			req = 1
		}
		if d.IsMissingSkill {
			missing = 1
		}
		if d.IsBonusSkill {
			bonus = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skill_match_details (result_id, skill_name, candidate_has_skill, proficiency, years_experience, required, importance, min_experience_years, weight, score, is_missing_skill, is_bonus_skill)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, d.SkillName, has, d.Proficiency, d.YearsExperience, req, d.Importance, d.MinExperienceYears, d.Weight, d.Score, missing, bonus); err != nil {
			_ = tx.Rollback()
			return 0, wrap("insert skill detail", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// SetAnalysis attaches the augmentation payload to a stored result.
func (r *SQLiteRepo) SetAnalysis(ctx context.Context, resultID int64, a *models.Analysis) error {
	b, err := json.Marshal(a)
	if err != nil {
		return wrap("marshal analysis", err)
	}
	res, err := r.conn.Exec(ctx, `UPDATE match_results SET analysis_json = ?, updated = ? WHERE id = ?`, string(b), now(), resultID)
	if err != nil {
		return wrap("set analysis", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("match result %d: %w", resultID, repository.ErrNotFound)
	}
	return nil
}

const resultColumns = `id, candidate_id, position_id, overall_score, skill_score, experience_score, education_score, location_score, details_json, reasons_json, suggestions_json, analysis_json, calculated_at, updated`

func (r *SQLiteRepo) GetResult(ctx context.Context, candidateID, positionID int64) (*models.MatchResult, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM match_results WHERE candidate_id = ? AND position_id = ?`, candidateID, positionID)
	m, err := scanResult(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match result %d/%d: %w", candidateID, positionID, repository.ErrNotFound)
		}
		return nil, err
	}

	details, err := r.skillDetails(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.SkillDetails = details
	return m, nil
}

func (r *SQLiteRepo) TopForCandidate(ctx context.Context, candidateID int64, minScore float64, limit int) ([]models.MatchResult, error) {
	return r.topResults(ctx, `candidate_id`, candidateID, minScore, limit)
}

func (r *SQLiteRepo) TopForPosition(ctx context.Context, positionID int64, minScore float64, limit int) ([]models.MatchResult, error) {
	return r.topResults(ctx, `position_id`, positionID, minScore, limit)
}

func (r *SQLiteRepo) topResults(ctx context.Context, keyCol string, keyID int64, minScore float64, limit int) ([]models.MatchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT ` + resultColumns + ` FROM match_results WHERE ` + keyCol + ` = ? AND overall_score >= ? ORDER BY overall_score DESC, id ASC LIMIT ?`
	rows, err := r.conn.QueryRows(ctx, q, keyID, minScore, limit)
	if err != nil {
		return nil, wrap("top results", err)
	}
	defer rows.Close()

	var out []models.MatchResult
	for rows.Next() {
		m, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) StatsForCandidate(ctx context.Context, candidateID int64) (*models.MatchStats, error) {
	return r.stats(ctx, `candidate_id`, candidateID)
}

func (r *SQLiteRepo) StatsForPosition(ctx context.Context, positionID int64) (*models.MatchStats, error) {
	return r.stats(ctx, `position_id`, positionID)
}

func (r *SQLiteRepo) stats(ctx context.Context, keyCol string, keyID int64) (*models.MatchStats, error) {
	q := `SELECT COUNT(1),
		COALESCE(SUM(CASE WHEN overall_score >= 80 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN overall_score >= 60 AND overall_score < 80 THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(overall_score), 0),
		COALESCE(MAX(overall_score), 0)
		FROM match_results WHERE ` + keyCol + ` = ?`

	var s models.MatchStats
	row := r.conn.QueryRow(ctx, q, keyID)
	if err := row.Scan(&s.TotalMatches, &s.HighQuality, &s.MediumQuality, &s.AverageScore, &s.TopScore); err != nil {
		return nil, wrap("match stats", err)
	}
	return &s, nil
}

func (r *SQLiteRepo) skillDetails(ctx context.Context, resultID int64) ([]models.SkillMatchDetail, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, result_id, skill_name, candidate_has_skill, proficiency, years_experience, required, importance, min_experience_years, weight, score, is_missing_skill, is_bonus_skill
		 FROM skill_match_details WHERE result_id = ? ORDER BY id`, resultID)
	if err != nil {
		return nil, wrap("list skill details", err)
	}
	defer rows.Close()

	var out []models.SkillMatchDetail
	for rows.Next() {
		var d models.SkillMatchDetail
		var has, req, missing, bonus int
		if err := rows.Scan(&d.ID, &d.ResultID, &d.SkillName, &has, &d.Proficiency, &d.YearsExperience, &req, &d.Importance, &d.MinExperienceYears, &d.Weight, &d.Score, &missing, &bonus); err != nil {
			return nil, err
		}
		d.CandidateHasSkill = has == 1
		d.Required = req == 1
		d.IsMissingSkill = missing == 1
		d.IsBonusSkill = bonus == 1
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanResult(row rowScanner) (*models.MatchResult, error) {
	var m models.MatchResult
	var details, reasons, suggestions string
	var analysis sql.NullString
	if err := row.Scan(&m.ID, &m.CandidateID, &m.PositionID, &m.OverallScore, &m.SkillScore, &m.ExperienceScore, &m.EducationScore, &m.LocationScore, &details, &reasons, &suggestions, &analysis, &m.CalculatedAt, &m.Updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(details), &m.Details); err != nil {
		return nil, wrap("unmarshal details", err)
	}
	if err := json.Unmarshal([]byte(reasons), &m.RecommendationReasons); err != nil {
		return nil, wrap("unmarshal reasons", err)
	}
	if err := json.Unmarshal([]byte(suggestions), &m.ImprovementSuggestions); err != nil {
		return nil, wrap("unmarshal suggestions", err)
	}
	if analysis.Valid && analysis.String != "" {
		var a models.Analysis
		if err := json.Unmarshal([]byte(analysis.String), &a); err != nil {
			return nil, wrap("unmarshal analysis", err)
		}
		m.Analysis = &a
	}
	return &m, nil
}
