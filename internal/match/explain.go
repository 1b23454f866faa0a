package match

import (
	"fmt"
	"strings"

	"github.com/talentlink/matchengine/pkg/models"
)

// Reasons derives human-readable recommendation reasons from the dimension
// outputs. Evaluation order is fixed so the list is deterministic.
func Reasons(skills SkillOutcome, experienceScore, educationScore, locationScore float64) []string {
	reasons := []string{}

	if skills.SkillScore >= 80 {
		reasons = append(reasons, fmt.Sprintf("skill match is high at %.1f%%", skills.SkillScore))
	}
	required := skills.RequiredCount
	if required < 1 {
		required = 1
	}
	if float64(skills.MatchedCount)/float64(required) >= 0.8 {
		reasons = append(reasons, fmt.Sprintf("meets %d/%d required skills", skills.MatchedCount, skills.RequiredCount))
	}
	if skills.BonusCount > 0 {
		reasons = append(reasons, fmt.Sprintf("brings %d bonus skills", skills.BonusCount))
	}
	if experienceScore >= 90 {
		reasons = append(reasons, "experience fully meets the requirement")
	} else if experienceScore >= 70 {
		reasons = append(reasons, "experience largely meets the requirement")
	}
	if educationScore >= 90 {
		reasons = append(reasons, "education background fully matches")
	}
	if locationScore >= 90 {
		reasons = append(reasons, "location preference matches")
	}

	return reasons
}

// Suggestions derives improvement guidance from the skill outcome. Missing
// critical skills come first, then important ones (top three named each),
// then a generic proficiency suggestion for weak skill scores.
func Suggestions(skills SkillOutcome) []string {
	suggestions := []string{}

	var critical, important []string
	for _, m := range skills.MissingSkills {
		switch m.Importance {
		case models.ImportanceCritical:
			critical = append(critical, m.SkillName)
		case models.ImportanceImportant:
			important = append(important, m.SkillName)
		}
	}
	if len(critical) > 0 {
		suggestions = append(suggestions, "focus on learning critical skills: "+strings.Join(topN(critical, 3), ", "))
	}
	if len(important) > 0 {
		suggestions = append(suggestions, "consider adding important skills: "+strings.Join(topN(important, 3), ", "))
	}
	if skills.SkillScore < 60 {
		suggestions = append(suggestions, "improve proficiency in existing skills and gain more project experience")
	}

	return suggestions
}

func topN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
