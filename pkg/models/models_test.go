package models_test

import (
	"errors"
	"testing"

	"github.com/talentlink/matchengine/pkg/models"
)

func TestAlgorithmConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     models.AlgorithmConfig
		wantErr bool
	}{
		{"default weights", *models.DefaultConfig(), false},
		{"within tolerance", models.AlgorithmConfig{Name: "t", SkillWeight: 0.25, ExperienceWeight: 0.25, EducationWeight: 0.25, LocationWeight: 0.255}, false},
		{"sum too high", models.AlgorithmConfig{Name: "t", SkillWeight: 0.5, ExperienceWeight: 0.5, EducationWeight: 0.5}, true},
		{"sum too low", models.AlgorithmConfig{Name: "t", SkillWeight: 0.2, ExperienceWeight: 0.2}, true},
		{"negative weight", models.AlgorithmConfig{Name: "t", SkillWeight: -0.1, ExperienceWeight: 0.6, EducationWeight: 0.3, LocationWeight: 0.2}, true},
		{"missing name", models.AlgorithmConfig{SkillWeight: 0.4, ExperienceWeight: 0.3, EducationWeight: 0.2, LocationWeight: 0.1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAlgorithmConfig_InvalidWeightsSentinel(t *testing.T) {
	cfg := models.AlgorithmConfig{Name: "bad", SkillWeight: 1.0, ExperienceWeight: 1.0}
	if err := cfg.Validate(); !errors.Is(err, models.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestMatchResult_Level(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{95, "excellent"},
		{90, "excellent"},
		{85, "very_good"},
		{75, "good"},
		{65, "fair"},
		{30, "poor"},
	}
	for _, tc := range cases {
		r := models.MatchResult{OverallScore: tc.score}
		if got := r.Level(); got != tc.want {
			t.Fatalf("score %v: got %q want %q", tc.score, got, tc.want)
		}
	}
}

func TestCandidate_AvgExperience(t *testing.T) {
	c := models.Candidate{}
	if got := c.AvgExperience(); got != 0 {
		t.Fatalf("no skills should average 0, got %v", got)
	}

	c.Skills = []models.CandidateSkill{
		{SkillName: "a", YearsExperience: 2},
		{SkillName: "b", YearsExperience: 4},
	}
	if got := c.AvgExperience(); got != 3 {
		t.Fatalf("expected mean 3, got %v", got)
	}
}

func TestProficiencyWeights(t *testing.T) {
	cases := map[models.Proficiency]float64{
		models.ProficiencyBeginner:     0.3,
		models.ProficiencyIntermediate: 0.6,
		models.ProficiencyAdvanced:     0.8,
		models.ProficiencyExpert:       1.0,
		models.Proficiency("bogus"):    0,
	}
	for p, want := range cases {
		if got := p.Weight(); got != want {
			t.Fatalf("%s: got %v want %v", p, got, want)
		}
	}
}

func TestNeutralAnalysis(t *testing.T) {
	a := models.NeutralAnalysis()
	if a.ConfidenceScore != 0 {
		t.Fatalf("neutral analysis must have zero confidence, got %v", a.ConfidenceScore)
	}
	if a.Strengths == nil || a.Concerns == nil || a.SkillRecommendations == nil {
		t.Fatalf("neutral analysis slices must be non-nil: %+v", a)
	}
}
