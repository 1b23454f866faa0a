package repository

import (
	"context"
	"errors"

	"github.com/talentlink/matchengine/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// The scoring engine only ever sees these interfaces and the immutable
// models they return.

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

type CandidateRepo interface {
	CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error)
	GetCandidate(ctx context.Context, id int64) (*models.Candidate, error)
	ListCandidates(ctx context.Context, ids []int64) ([]models.Candidate, error)
}

type PositionRepo interface {
	CreatePosition(ctx context.Context, p *models.Position) (int64, error)
	GetPosition(ctx context.Context, id int64) (*models.Position, error)
	ListPositions(ctx context.Context, ids []int64) ([]models.Position, error)
}

type ConfigRepo interface {
	// SaveConfig validates and persists a config; invalid weights are
	// rejected, never normalized.
	SaveConfig(ctx context.Context, c *models.AlgorithmConfig) (int64, error)
	GetActiveConfig(ctx context.Context, name string) (*models.AlgorithmConfig, error)
	ListConfigs(ctx context.Context) ([]models.AlgorithmConfig, error)
	ActivateConfig(ctx context.Context, name string) error
}

type ResultRepo interface {
	// UpsertResult stores the result for its (candidate, position) pair,
	// replacing any previous row and its skill detail rows atomically.
	UpsertResult(ctx context.Context, r *models.MatchResult) (int64, error)
	// SetAnalysis attaches an augmentation payload to an existing result.
	SetAnalysis(ctx context.Context, resultID int64, a *models.Analysis) error
	GetResult(ctx context.Context, candidateID, positionID int64) (*models.MatchResult, error)
	TopForCandidate(ctx context.Context, candidateID int64, minScore float64, limit int) ([]models.MatchResult, error)
	TopForPosition(ctx context.Context, positionID int64, minScore float64, limit int) ([]models.MatchResult, error)
	StatsForCandidate(ctx context.Context, candidateID int64) (*models.MatchStats, error)
	StatsForPosition(ctx context.Context, positionID int64) (*models.MatchStats, error)
}

type RunRepo interface {
	CreateRun(ctx context.Context, r *models.MatchRun) (int64, error)
	UpdateRun(ctx context.Context, r *models.MatchRun) error
	GetRun(ctx context.Context, id int64) (*models.MatchRun, error)
}

type RecruiterRepo interface {
	CreateRecruiter(ctx context.Context, rec *models.Recruiter) (int64, error)
	GetRecruiterByEmail(ctx context.Context, email string) (*models.Recruiter, error)
}
