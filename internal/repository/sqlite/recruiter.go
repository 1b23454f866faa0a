package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

func (r *SQLiteRepo) CreateRecruiter(ctx context.Context, rec *models.Recruiter) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("recruiter is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO recruiters (name, email, password_hash, updated) VALUES (?, ?, ?, ?)`,
		rec.Name, rec.Email, rec.PasswordHash, now())
	if err != nil {
		return 0, wrap("create recruiter", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetRecruiterByEmail(ctx context.Context, email string) (*models.Recruiter, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, updated FROM recruiters WHERE email = ?`, email)

	var rec models.Recruiter
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.PasswordHash, &rec.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recruiter %s: %w", email, repository.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}
