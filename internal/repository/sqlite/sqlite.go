package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/talentlink/matchengine/internal/db"
	"github.com/talentlink/matchengine/pkg/repository"
)

// SQLiteRepo implements the repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn *db.DB
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.CandidateRepo = (*SQLiteRepo)(nil)
var _ repository.PositionRepo = (*SQLiteRepo)(nil)
var _ repository.ConfigRepo = (*SQLiteRepo)(nil)
var _ repository.ResultRepo = (*SQLiteRepo)(nil)
var _ repository.RunRepo = (*SQLiteRepo)(nil)
var _ repository.RecruiterRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB) *SQLiteRepo {
	return &SQLiteRepo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().Unix()
}

// placeholders returns "?,?,..." for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
