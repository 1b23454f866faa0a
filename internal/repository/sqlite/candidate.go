package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

func (r *SQLiteRepo) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("candidate is nil")
	}

	locs, err := json.Marshal(c.PreferredLocations)
	if err != nil {
		return 0, wrap("marshal preferred locations", err)
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var id int64
	row := tx.QueryRowContext(ctx,
		`INSERT INTO candidates (name, education_level, preferred_locations, updated) VALUES (?, ?, ?, ?) RETURNING id`,
		c.Name, c.Education, string(locs), now())
	if err := row.Scan(&id); err != nil {
		_ = tx.Rollback()
		return 0, wrap("insert candidate", err)
	}

	for _, s := range c.Skills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO candidate_skills (candidate_id, skill_name, proficiency, years_experience) VALUES (?, ?, ?, ?)`,
			id, s.SkillName, s.Proficiency, s.YearsExperience); err != nil {
			_ = tx.Rollback()
			return 0, wrap("insert candidate skill", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteRepo) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, education_level, preferred_locations, updated FROM candidates WHERE id = ?`, id)

	var c models.Candidate
	var locs string
	if err := row.Scan(&c.ID, &c.Name, &c.Education, &locs, &c.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("candidate %d: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(locs), &c.PreferredLocations); err != nil {
		return nil, wrap("unmarshal preferred locations", err)
	}

	skills, err := r.candidateSkills(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Skills = skills

	return &c, nil
}

// ListCandidates returns candidates by ID, or every candidate when ids is empty.
func (r *SQLiteRepo) ListCandidates(ctx context.Context, ids []int64) ([]models.Candidate, error) {
	q := `SELECT id, name, education_level, preferred_locations, updated FROM candidates`
	var args []any
	if len(ids) > 0 {
		q += ` WHERE id IN (` + placeholders(len(ids)) + `)`
		args = int64Args(ids)
	}
	q += ` ORDER BY id`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, wrap("list candidates", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var locs string
		if err := rows.Scan(&c.ID, &c.Name, &c.Education, &locs, &c.Updated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(locs), &c.PreferredLocations); err != nil {
			return nil, wrap("unmarshal preferred locations", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		skills, err := r.candidateSkills(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Skills = skills
	}
	return out, nil
}

func (r *SQLiteRepo) candidateSkills(ctx context.Context, candidateID int64) ([]models.CandidateSkill, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT skill_name, proficiency, years_experience FROM candidate_skills WHERE candidate_id = ? ORDER BY id`, candidateID)
	if err != nil {
		return nil, wrap("list candidate skills", err)
	}
	defer rows.Close()

	var out []models.CandidateSkill
	for rows.Next() {
		var s models.CandidateSkill
		if err := rows.Scan(&s.SkillName, &s.Proficiency, &s.YearsExperience); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
