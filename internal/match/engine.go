package match

import (
	"context"
	"fmt"
	"math"
	"time"

	"log/slog"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

// Analyzer is the optional augmentation capability layered on a computed
// result. Implementations must be time-bounded; the engine treats any error
// as recoverable and falls back to a neutral analysis.
type Analyzer interface {
	Analyze(ctx context.Context, c *models.Candidate, p *models.Position, r *models.MatchResult) (*models.Analysis, error)
}

// Engine combines the four dimension scores into a persisted MatchResult.
type Engine struct {
	candidates repository.CandidateRepo
	positions  repository.PositionRepo
	results    repository.ResultRepo
	analyzer   Analyzer
	logger     *slog.Logger

	augmentTimeout time.Duration
}

// NewEngine wires the engine. analyzer may be nil, which disables augmentation.
func NewEngine(cr repository.CandidateRepo, pr repository.PositionRepo, rr repository.ResultRepo, analyzer Analyzer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		candidates:     cr,
		positions:      pr,
		results:        rr,
		analyzer:       analyzer,
		logger:         logger,
		augmentTimeout: 15 * time.Second,
	}
}

// SetAugmentTimeout bounds the augmentation call. Zero or negative values are ignored.
func (e *Engine) SetAugmentTimeout(d time.Duration) {
	if d > 0 {
		e.augmentTimeout = d
	}
}

// CalculatePair resolves both entities and computes their match.
func (e *Engine) CalculatePair(ctx context.Context, candidateID, positionID int64, cfg *models.AlgorithmConfig) (*models.MatchResult, error) {
	candidate, err := e.candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("get candidate %d: %w", candidateID, err)
	}
	position, err := e.positions.GetPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("get position %d: %w", positionID, err)
	}
	return e.Calculate(ctx, candidate, position, cfg)
}

// Calculate computes all dimension scores, assembles the full MatchResult in
// memory, persists it as a single atomic upsert (replacing detail rows), and
// finally runs augmentation. The numeric fields never depend on augmentation.
func (e *Engine) Calculate(ctx context.Context, candidate *models.Candidate, position *models.Position, cfg *models.AlgorithmConfig) (*models.MatchResult, error) {
	// configs are validated at save time; re-check before use anyway
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	skills := ScoreSkills(candidate, position)
	experienceScore := ScoreExperience(candidate, position)
	educationScore := ScoreEducation(candidate, position)
	locationScore := ScoreLocation(candidate, position)

	overall := skills.SkillScore*cfg.SkillWeight +
		experienceScore*cfg.ExperienceWeight +
		educationScore*cfg.EducationWeight +
		locationScore*cfg.LocationWeight

	result := &models.MatchResult{
		CandidateID:     candidate.ID,
		PositionID:      position.ID,
		OverallScore:    round2(overall),
		SkillScore:      round2(skills.SkillScore),
		ExperienceScore: round2(experienceScore),
		EducationScore:  round2(educationScore),
		LocationScore:   round2(locationScore),
		Details: models.MatchDetails{
			RequiredSkills: skills.RequiredCount,
			MatchedSkills:  skills.MatchedCount,
			BonusSkills:    skills.BonusCount,
			MissingSkills:  skills.MissingSkills,
			BonusList:      skills.BonusSkills,
		},
		RecommendationReasons:  Reasons(skills, experienceScore, educationScore, locationScore),
		ImprovementSuggestions: Suggestions(skills),
		SkillDetails:           skills.Details,
	}

	id, err := e.results.UpsertResult(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("persist match result: %w", err)
	}
	result.ID = id

	e.augment(ctx, candidate, position, result)

	e.logger.Info("match calculated",
		"candidate_id", candidate.ID,
		"position_id", position.ID,
		"overall", result.OverallScore,
		"level", result.Level(),
	)
	return result, nil
}

// augment enriches the committed result. Failures are logged and replaced
// with a neutral analysis; they never propagate out of the pipeline.
func (e *Engine) augment(ctx context.Context, candidate *models.Candidate, position *models.Position, result *models.MatchResult) {
	if e.analyzer == nil {
		return
	}

	actx, cancel := context.WithTimeout(ctx, e.augmentTimeout)
	defer cancel()

	analysis, err := e.analyzer.Analyze(actx, candidate, position, result)
	if err != nil || analysis == nil {
		e.logger.Warn("augmentation failed, using neutral analysis",
			"candidate_id", candidate.ID, "position_id", position.ID, "err", err)
		analysis = models.NeutralAnalysis()
	}
	result.Analysis = analysis

	if err := e.results.SetAnalysis(ctx, result.ID, analysis); err != nil {
		e.logger.Warn("store analysis failed", "result_id", result.ID, "err", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
