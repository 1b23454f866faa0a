package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

// SaveConfig validates and upserts a config by name. Invalid weights are
// rejected here, never silently normalized.
func (r *SQLiteRepo) SaveConfig(ctx context.Context, c *models.AlgorithmConfig) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("config is nil")
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}

	active := 0
	if c.IsActive {
		active = 1
	}
	row := r.conn.QueryRow(ctx,
		`INSERT INTO algorithm_configs (name, description, skill_weight, experience_weight, education_weight, location_weight, is_active, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			description=excluded.description,
			skill_weight=excluded.skill_weight,
			experience_weight=excluded.experience_weight,
			education_weight=excluded.education_weight,
			location_weight=excluded.location_weight,
			is_active=excluded.is_active,
			updated=excluded.updated
		 RETURNING id`,
		c.Name, c.Description, c.SkillWeight, c.ExperienceWeight, c.EducationWeight, c.LocationWeight, active, now(), now())

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, wrap("save config", err)
	}
	return id, nil
}

// GetActiveConfig returns the active config with the given name, or the
// single active config when name is empty.
func (r *SQLiteRepo) GetActiveConfig(ctx context.Context, name string) (*models.AlgorithmConfig, error) {
	q := `SELECT id, name, description, skill_weight, experience_weight, education_weight, location_weight, is_active, created, updated FROM algorithm_configs WHERE is_active = 1`
	var args []any
	if name != "" {
		q += ` AND name = ?`
		args = append(args, name)
	}
	q += ` ORDER BY updated DESC LIMIT 1`

	row := r.conn.QueryRow(ctx, q, args...)
	c, err := scanConfig(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("active config %q: %w", name, repository.ErrNotFound)
		}
		return nil, err
	}

	// stored rows should always be valid; guard against hand-edited data
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepo) ListConfigs(ctx context.Context) ([]models.AlgorithmConfig, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, name, description, skill_weight, experience_weight, education_weight, location_weight, is_active, created, updated FROM algorithm_configs ORDER BY name`)
	if err != nil {
		return nil, wrap("list configs", err)
	}
	defer rows.Close()

	var out []models.AlgorithmConfig
	for rows.Next() {
		var c models.AlgorithmConfig
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SkillWeight, &c.ExperienceWeight, &c.EducationWeight, &c.LocationWeight, &active, &c.Created, &c.Updated); err != nil {
			return nil, err
		}
		c.IsActive = active == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

// ActivateConfig makes the named config the only active one.
func (r *SQLiteRepo) ActivateConfig(ctx context.Context, name string) error {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `UPDATE algorithm_configs SET is_active = 1, updated = ? WHERE name = ?`, now(), name)
	if err != nil {
		_ = tx.Rollback()
		return wrap("activate config", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("config %q: %w", name, repository.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE algorithm_configs SET is_active = 0 WHERE name != ?`, name); err != nil {
		_ = tx.Rollback()
		return wrap("deactivate configs", err)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*models.AlgorithmConfig, error) {
	var c models.AlgorithmConfig
	var active int
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SkillWeight, &c.ExperienceWeight, &c.EducationWeight, &c.LocationWeight, &active, &c.Created, &c.Updated); err != nil {
		return nil, err
	}
	c.IsActive = active == 1
	return &c, nil
}
