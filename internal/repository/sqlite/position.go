package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

func (r *SQLiteRepo) CreatePosition(ctx context.Context, p *models.Position) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("position is nil")
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var id int64
	row := tx.QueryRowContext(ctx,
		`INSERT INTO positions (title, experience_level, location_city, remote_option, updated) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		p.Title, p.ExperienceLevel, p.LocationCity, p.RemoteOption, now())
	if err := row.Scan(&id); err != nil {
		_ = tx.Rollback()
		return 0, wrap("insert position", err)
	}

	for _, s := range p.RequiredSkills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO position_required_skills (position_id, skill_name, importance, min_experience_years, weight) VALUES (?, ?, ?, ?, ?)`,
			id, s.SkillName, s.Importance, s.MinExperienceYears, s.Weight); err != nil {
			_ = tx.Rollback()
			return 0, wrap("insert required skill", err)
		}
	}
	for _, s := range p.PreferredSkills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO position_preferred_skills (position_id, skill_name, bonus_points) VALUES (?, ?, ?)`,
			id, s.SkillName, s.BonusPoints); err != nil {
			_ = tx.Rollback()
			return 0, wrap("insert preferred skill", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteRepo) GetPosition(ctx context.Context, id int64) (*models.Position, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, title, experience_level, location_city, remote_option, updated FROM positions WHERE id = ?`, id)

	var p models.Position
	if err := row.Scan(&p.ID, &p.Title, &p.ExperienceLevel, &p.LocationCity, &p.RemoteOption, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("position %d: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}

	if err := r.positionSkills(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPositions returns positions by ID, or every position when ids is empty.
func (r *SQLiteRepo) ListPositions(ctx context.Context, ids []int64) ([]models.Position, error) {
	q := `SELECT id, title, experience_level, location_city, remote_option, updated FROM positions`
	var args []any
	if len(ids) > 0 {
		q += ` WHERE id IN (` + placeholders(len(ids)) + `)`
		args = int64Args(ids)
	}
	q += ` ORDER BY id`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, wrap("list positions", err)
	}
	defer rows.Close()

	var out []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Title, &p.ExperienceLevel, &p.LocationCity, &p.RemoteOption, &p.Updated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.positionSkills(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteRepo) positionSkills(ctx context.Context, p *models.Position) error {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT skill_name, importance, min_experience_years, weight FROM position_required_skills WHERE position_id = ? ORDER BY id`, p.ID)
	if err != nil {
		return wrap("list required skills", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.RequiredSkill
		if err := rows.Scan(&s.SkillName, &s.Importance, &s.MinExperienceYears, &s.Weight); err != nil {
			return err
		}
		p.RequiredSkills = append(p.RequiredSkills, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	prefRows, err := r.conn.QueryRows(ctx,
		`SELECT skill_name, bonus_points FROM position_preferred_skills WHERE position_id = ? ORDER BY id`, p.ID)
	if err != nil {
		return wrap("list preferred skills", err)
	}
	defer prefRows.Close()

	for prefRows.Next() {
		var s models.PreferredSkill
		if err := prefRows.Scan(&s.SkillName, &s.BonusPoints); err != nil {
			return err
		}
		p.PreferredSkills = append(p.PreferredSkills, s)
	}
	return prefRows.Err()
}
