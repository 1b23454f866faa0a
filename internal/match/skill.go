package match

import (
	"math"

	"github.com/talentlink/matchengine/pkg/models"
)

// SkillOutcome is the full output of the skill dimension: the score plus the
// per-skill breakdown the explanation generator and detail rows are built from.
type SkillOutcome struct {
	SkillScore    float64
	Details       []models.SkillMatchDetail
	MissingSkills []models.MissingSkillEntry
	BonusSkills   []models.BonusSkillEntry
	RequiredCount int
	MatchedCount  int
	BonusCount    int
}

const (
	proficiencyShare = 0.6
	experienceShare  = 0.4
)

// ScoreSkills scores required/preferred skill coverage. It is a pure function
// of candidate and position data and iterates position skills in declaration
// order so the outcome is deterministic.
//
// A position with zero required skills scores 0 regardless of bonus skills:
// bonuses only count relative to the required-skill denominator, so
// under-specified postings are not rewarded.
func ScoreSkills(c *models.Candidate, p *models.Position) SkillOutcome {
	held := make(map[string]models.CandidateSkill, len(c.Skills))
	for _, s := range c.Skills {
		held[s.SkillName] = s
	}
	required := make(map[string]struct{}, len(p.RequiredSkills))
	for _, r := range p.RequiredSkills {
		required[r.SkillName] = struct{}{}
	}

	out := SkillOutcome{
		Details:       []models.SkillMatchDetail{},
		MissingSkills: []models.MissingSkillEntry{},
		BonusSkills:   []models.BonusSkillEntry{},
		RequiredCount: len(p.RequiredSkills),
	}

	var total, maxPossible float64

	for _, req := range p.RequiredSkills {
		importanceWeight := req.Importance.Weight()
		maxPossible += importanceWeight * req.Weight * 100

		skill, ok := held[req.SkillName]
		if !ok {
			out.MissingSkills = append(out.MissingSkills, models.MissingSkillEntry{
				SkillName:          req.SkillName,
				Importance:         req.Importance,
				MinExperienceYears: req.MinExperienceYears,
			})
			out.Details = append(out.Details, models.SkillMatchDetail{
				SkillName:          req.SkillName,
				Required:           true,
				Importance:         req.Importance,
				MinExperienceYears: req.MinExperienceYears,
				Weight:             req.Weight,
				IsMissingSkill:     true,
			})
			continue
		}

		proficiencyScore := skill.Proficiency.Weight() * 100
		experienceScore := math.Min(skill.YearsExperience/math.Max(req.MinExperienceYears, 1), 1.0) * 100
		skillScore := proficiencyScore*proficiencyShare + experienceScore*experienceShare
		total += skillScore * importanceWeight * req.Weight

		out.MatchedCount++
		out.Details = append(out.Details, models.SkillMatchDetail{
			SkillName:          req.SkillName,
			CandidateHasSkill:  true,
			Proficiency:        skill.Proficiency,
			YearsExperience:    skill.YearsExperience,
			Required:           true,
			Importance:         req.Importance,
			MinExperienceYears: req.MinExperienceYears,
			Weight:             req.Weight,
			Score:              skillScore,
		})
	}

	// Preferred skills the candidate holds add uncapped bonus credit, but
	// only when they are not already required.
	for _, pref := range p.PreferredSkills {
		skill, ok := held[pref.SkillName]
		if !ok {
			continue
		}
		if _, isRequired := required[pref.SkillName]; isRequired {
			continue
		}
		proficiencyScore := skill.Proficiency.Weight() * 100
		total += proficiencyScore * pref.BonusPoints

		out.BonusCount++
		out.BonusSkills = append(out.BonusSkills, models.BonusSkillEntry{
			SkillName:   pref.SkillName,
			Proficiency: skill.Proficiency,
			BonusPoints: pref.BonusPoints,
		})
		out.Details = append(out.Details, models.SkillMatchDetail{
			SkillName:         pref.SkillName,
			CandidateHasSkill: true,
			Proficiency:       skill.Proficiency,
			YearsExperience:   skill.YearsExperience,
			Weight:            1.0,
			Score:             proficiencyScore,
			IsBonusSkill:      true,
		})
	}

	if maxPossible > 0 {
		out.SkillScore = math.Min(total/maxPossible*100, 100.0)
	}

	return out
}
