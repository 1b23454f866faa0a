package match

import (
	"math"

	"github.com/talentlink/matchengine/pkg/models"
)

// ScoreExperience scores seniority fit. The candidate's experience is the
// mean of years across held skills; the position's requirement is derived
// from its seniority tier. Over-qualification beyond twice the requirement
// is penalized mildly with a floor of 85.
func ScoreExperience(c *models.Candidate, p *models.Position) float64 {
	required := p.ExperienceLevel.RequiredYears()
	years := c.AvgExperience()

	if required == 0 {
		return 100.0
	}
	if years >= required {
		excess := years / required
		if excess <= 2.0 {
			return 100.0
		}
		return math.Max(85.0, 100.0-(excess-2.0)*5)
	}
	return math.Max(0.0, years/required*100.0)
}

// ScoreEducation scores credential fit against the level implied by the
// position's seniority tier.
func ScoreEducation(c *models.Candidate, p *models.Position) float64 {
	candidateLevel := c.Education.Ordinal()
	requiredLevel := p.ExperienceLevel.RequiredEducation()

	if candidateLevel >= requiredLevel {
		return 100.0
	}
	return math.Max(0.0, float64(candidateLevel)/float64(requiredLevel)*100.0)
}

// ScoreLocation scores geographic fit. Remote and hybrid positions make
// location irrelevant; candidates with no stated preference get a neutral
// score rather than a mismatch penalty.
func ScoreLocation(c *models.Candidate, p *models.Position) float64 {
	if p.RemoteOption == models.RemoteFull || p.RemoteOption == models.RemoteHybrid {
		return 100.0
	}
	for _, loc := range c.PreferredLocations {
		if loc == p.LocationCity {
			return 100.0
		}
	}
	if len(c.PreferredLocations) == 0 {
		return 60.0
	}
	return 20.0
}
