package models

import (
	"fmt"
	"math"
)

// Domain models matching the database schema in db/migrations/0001_init.sql

// Proficiency is the self-reported mastery tier of a candidate skill.
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

var proficiencyWeights = map[Proficiency]float64{
	ProficiencyBeginner:     0.3,
	ProficiencyIntermediate: 0.6,
	ProficiencyAdvanced:     0.8,
	ProficiencyExpert:       1.0,
}

// Weight returns the scoring weight for the proficiency tier, 0 for unknown tiers.
func (p Proficiency) Weight() float64 { return proficiencyWeights[p] }

// Importance classifies how essential a required skill is to a position.
type Importance string

const (
	ImportanceCritical   Importance = "critical"
	ImportanceImportant  Importance = "important"
	ImportanceNiceToHave Importance = "nice_to_have"
)

var importanceWeights = map[Importance]float64{
	ImportanceCritical:   3.0,
	ImportanceImportant:  2.0,
	ImportanceNiceToHave: 1.0,
}

func (i Importance) Weight() float64 { return importanceWeights[i] }

// ExperienceLevel is the seniority tier a position is posted at.
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelJunior    ExperienceLevel = "junior"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelLead      ExperienceLevel = "lead"
	LevelExecutive ExperienceLevel = "executive"
)

var requiredYears = map[ExperienceLevel]float64{
	LevelEntry:     0,
	LevelJunior:    1,
	LevelMid:       3,
	LevelSenior:    5,
	LevelLead:      8,
	LevelExecutive: 10,
}

// RequiredYears returns the years of experience a seniority tier implies.
func (l ExperienceLevel) RequiredYears() float64 { return requiredYears[l] }

var requiredEducation = map[ExperienceLevel]int{
	LevelEntry:     1,
	LevelJunior:    2,
	LevelMid:       2,
	LevelSenior:    2,
	LevelLead:      3,
	LevelExecutive: 3,
}

// RequiredEducation returns the education ordinal a seniority tier implies,
// defaulting to bachelor for unknown tiers.
func (l ExperienceLevel) RequiredEducation() int {
	if v, ok := requiredEducation[l]; ok {
		return v
	}
	return 2
}

// EducationLevel is a candidate credential tier.
type EducationLevel string

const (
	EducationDiploma  EducationLevel = "diploma"
	EducationBachelor EducationLevel = "bachelor"
	EducationMaster   EducationLevel = "master"
	EducationPhD      EducationLevel = "phd"
)

var educationOrdinals = map[EducationLevel]int{
	EducationDiploma:  1,
	EducationBachelor: 2,
	EducationMaster:   3,
	EducationPhD:      4,
}

// Ordinal returns the comparable rank of the credential, 0 for unknown tiers.
func (e EducationLevel) Ordinal() int { return educationOrdinals[e] }

// RemoteOption is a position's work arrangement.
type RemoteOption string

const (
	RemoteOnSite RemoteOption = "on_site"
	RemoteFull   RemoteOption = "remote"
	RemoteHybrid RemoteOption = "hybrid"
)

type CandidateSkill struct {
	SkillName       string      `json:"skill_name" db:"skill_name"`
	Proficiency     Proficiency `json:"proficiency" db:"proficiency"`
	YearsExperience float64     `json:"years_experience" db:"years_experience"`
}

type Candidate struct {
	ID                 int64            `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	Education          EducationLevel   `json:"education_level" db:"education_level"`
	PreferredLocations []string         `json:"preferred_locations"`
	Skills             []CandidateSkill `json:"skills"`
	Updated            int64            `json:"updated" db:"updated"`
}

// AvgExperience is the arithmetic mean of years of experience across all
// held skills, 0 when the candidate lists none.
func (c *Candidate) AvgExperience() float64 {
	if len(c.Skills) == 0 {
		return 0
	}
	var sum float64
	for _, s := range c.Skills {
		sum += s.YearsExperience
	}
	return sum / float64(len(c.Skills))
}

type RequiredSkill struct {
	SkillName          string     `json:"skill_name" db:"skill_name"`
	Importance         Importance `json:"importance" db:"importance"`
	MinExperienceYears float64    `json:"min_experience_years" db:"min_experience_years"`
	Weight             float64    `json:"weight" db:"weight"`
}

type PreferredSkill struct {
	SkillName   string  `json:"skill_name" db:"skill_name"`
	BonusPoints float64 `json:"bonus_points" db:"bonus_points"`
}

type Position struct {
	ID              int64            `json:"id" db:"id"`
	Title           string           `json:"title" db:"title"`
	ExperienceLevel ExperienceLevel  `json:"experience_level" db:"experience_level"`
	LocationCity    string           `json:"location_city" db:"location_city"`
	RemoteOption    RemoteOption     `json:"remote_option" db:"remote_option"`
	RequiredSkills  []RequiredSkill  `json:"required_skills"`
	PreferredSkills []PreferredSkill `json:"preferred_skills"`
	Updated         int64            `json:"updated" db:"updated"`
}

// ErrInvalidWeights is returned when an AlgorithmConfig's weights do not sum to 1.
var ErrInvalidWeights = fmt.Errorf("algorithm config weights must sum to 1.0")

// AlgorithmConfig holds the dimension weights used to combine scores.
// Weights are never normalized silently: Validate rejects bad configs.
type AlgorithmConfig struct {
	ID               int64   `json:"id" db:"id"`
	Name             string  `json:"name" db:"name"`
	Description      string  `json:"description,omitempty" db:"description"`
	SkillWeight      float64 `json:"skill_weight" db:"skill_weight"`
	ExperienceWeight float64 `json:"experience_weight" db:"experience_weight"`
	EducationWeight  float64 `json:"education_weight" db:"education_weight"`
	LocationWeight   float64 `json:"location_weight" db:"location_weight"`
	IsActive         bool    `json:"is_active" db:"is_active"`
	Created          int64   `json:"created" db:"created"`
	Updated          int64   `json:"updated" db:"updated"`
}

// Validate checks that the config is named, all weights are non-negative,
// and the weights sum to 1.0 within a 0.01 tolerance.
func (c *AlgorithmConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("algorithm config name is required")
	}
	for _, w := range []float64{c.SkillWeight, c.ExperienceWeight, c.EducationWeight, c.LocationWeight} {
		if w < 0 {
			return fmt.Errorf("%w: negative weight", ErrInvalidWeights)
		}
	}
	sum := c.SkillWeight + c.ExperienceWeight + c.EducationWeight + c.LocationWeight
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("%w: got %.4f", ErrInvalidWeights, sum)
	}
	return nil
}

// DefaultConfig returns the stock weight configuration.
func DefaultConfig() *AlgorithmConfig {
	return &AlgorithmConfig{
		Name:             "default",
		Description:      "default matching weights",
		SkillWeight:      0.4,
		ExperienceWeight: 0.3,
		EducationWeight:  0.2,
		LocationWeight:   0.1,
		IsActive:         true,
	}
}

// SkillMatchDetail is one row of the per-skill breakdown of a match result.
// The full set is regenerated on every recalculation, never merged.
type SkillMatchDetail struct {
	ID                 int64       `json:"id" db:"id"`
	ResultID           int64       `json:"result_id" db:"result_id"`
	SkillName          string      `json:"skill_name" db:"skill_name"`
	CandidateHasSkill  bool        `json:"candidate_has_skill" db:"candidate_has_skill"`
	Proficiency        Proficiency `json:"proficiency,omitempty" db:"proficiency"`
	YearsExperience    float64     `json:"years_experience" db:"years_experience"`
	Required           bool        `json:"required" db:"required"`
	Importance         Importance  `json:"importance,omitempty" db:"importance"`
	MinExperienceYears float64     `json:"min_experience_years" db:"min_experience_years"`
	Weight             float64     `json:"weight" db:"weight"`
	Score              float64     `json:"score" db:"score"`
	IsMissingSkill     bool        `json:"is_missing_skill" db:"is_missing_skill"`
	IsBonusSkill       bool        `json:"is_bonus_skill" db:"is_bonus_skill"`
}

// MissingSkillEntry names a required skill the candidate lacks.
type MissingSkillEntry struct {
	SkillName          string     `json:"skill_name"`
	Importance         Importance `json:"importance"`
	MinExperienceYears float64    `json:"min_experience_years"`
}

// BonusSkillEntry names a preferred skill the candidate holds.
type BonusSkillEntry struct {
	SkillName   string      `json:"skill_name"`
	Proficiency Proficiency `json:"proficiency"`
	BonusPoints float64     `json:"bonus_points"`
}

// MatchDetails summarizes the skill dimension of a match result.
type MatchDetails struct {
	RequiredSkills int                 `json:"required_skills"`
	MatchedSkills  int                 `json:"matched_skills"`
	BonusSkills    int                 `json:"bonus_skills"`
	MissingSkills  []MissingSkillEntry `json:"missing_skills"`
	BonusList      []BonusSkillEntry   `json:"bonus_list"`
}

// Analysis is the optional LLM-produced narrative layered on a match result.
type Analysis struct {
	Compatibility        string   `json:"compatibility_analysis"`
	Strengths            []string `json:"strengths"`
	Concerns             []string `json:"concerns"`
	SkillRecommendations []string `json:"skill_recommendations"`
	CareerAdvice         string   `json:"career_advice"`
	ConfidenceScore      float64  `json:"confidence_score"`
}

// NeutralAnalysis is the fallback payload when augmentation is unavailable.
func NeutralAnalysis() *Analysis {
	return &Analysis{
		Compatibility:        "analysis unavailable",
		Strengths:            []string{},
		Concerns:             []string{},
		SkillRecommendations: []string{},
		ConfidenceScore:      0,
	}
}

// MatchResult is the engine's primary output, unique per (candidate, position).
type MatchResult struct {
	ID                     int64              `json:"id" db:"id"`
	CandidateID            int64              `json:"candidate_id" db:"candidate_id"`
	PositionID             int64              `json:"position_id" db:"position_id"`
	OverallScore           float64            `json:"overall_score" db:"overall_score"`
	SkillScore             float64            `json:"skill_score" db:"skill_score"`
	ExperienceScore        float64            `json:"experience_score" db:"experience_score"`
	EducationScore         float64            `json:"education_score" db:"education_score"`
	LocationScore          float64            `json:"location_score" db:"location_score"`
	Details                MatchDetails       `json:"details"`
	RecommendationReasons  []string           `json:"recommendation_reasons"`
	ImprovementSuggestions []string           `json:"improvement_suggestions"`
	Analysis               *Analysis          `json:"analysis,omitempty"`
	SkillDetails           []SkillMatchDetail `json:"skill_details,omitempty"`
	CalculatedAt           int64              `json:"calculated_at" db:"calculated_at"`
	Updated                int64              `json:"updated" db:"updated"`
}

// Level buckets the overall score into a display label.
func (r *MatchResult) Level() string {
	switch {
	case r.OverallScore >= 90:
		return "excellent"
	case r.OverallScore >= 80:
		return "very_good"
	case r.OverallScore >= 70:
		return "good"
	case r.OverallScore >= 60:
		return "fair"
	default:
		return "poor"
	}
}

// MatchRun statuses.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// MatchRun records one batch matching execution.
type MatchRun struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Status       string  `json:"status" db:"status"`
	CandidateIDs []int64 `json:"candidate_ids,omitempty"`
	PositionIDs  []int64 `json:"position_ids,omitempty"`
	MinScore     float64 `json:"min_score" db:"min_score"`
	Limit        int     `json:"limit" db:"result_limit"`
	TotalPairs   int     `json:"total_pairs" db:"total_pairs"`
	FailedPairs  int     `json:"failed_pairs" db:"failed_pairs"`
	TotalMatches int     `json:"total_matches" db:"total_matches"`
	ErrorMessage string  `json:"error_message,omitempty" db:"error_message"`
	Created      int64   `json:"created" db:"created"`
	StartedAt    *int64  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *int64  `json:"completed_at,omitempty" db:"completed_at"`
}

// MatchStats aggregates stored results for one candidate or position.
type MatchStats struct {
	TotalMatches  int     `json:"total_matches"`
	HighQuality   int     `json:"high_quality_matches"`
	MediumQuality int     `json:"medium_quality_matches"`
	AverageScore  float64 `json:"average_score"`
	TopScore      float64 `json:"top_score"`
}

// Recruiter is an account that can drive matching through the API.
type Recruiter struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`
	Updated      int64  `json:"updated" db:"updated"`
}
