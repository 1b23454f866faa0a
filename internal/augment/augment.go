// Package augment layers an optional LLM-produced qualitative analysis on
// top of a computed match result. It is never on the critical path of the
// numeric score: callers must treat every error here as recoverable.
package augment

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/qri-io/jsonschema"
	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/ollama"
)

//go:embed schema/analysis_v1.json
var analysisSchemaJSON []byte

// Config holds the augmentation engine settings.
type Config struct {
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MinConfidence float64       `yaml:"min_confidence"`
}

// Engine produces match analyses through an Ollama-served model.
type Engine struct {
	client *ollama.Client
	cfg    Config
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewEngine creates the augmentation engine. The embedded response schema is
// compiled once at construction.
func NewEngine(client *ollama.Client, cfg Config, logger *slog.Logger) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("ollama client is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("augment model is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.5
	}
	if logger == nil {
		logger = slog.Default()
	}

	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(analysisSchemaJSON, schema); err != nil {
		return nil, fmt.Errorf("compile analysis schema: %w", err)
	}

	return &Engine{client: client, cfg: cfg, schema: schema, logger: logger}, nil
}

const analysisPrompt = `You are a career advisor reviewing how well a candidate fits an open position.

Candidate: {{.CandidateName}} (education: {{.Education}})
Skills: {{.Skills}}

Position: {{.Title}} ({{.ExperienceLevel}} level, {{.Location}})
Required skills: {{.Required}}

Computed match: overall {{.Overall}}/100 (skills {{.SkillScore}}, experience {{.ExperienceScore}}, education {{.EducationScore}}, location {{.LocationScore}})
Missing skills: {{.Missing}}

Respond with a single JSON object and nothing else, using exactly these keys:
{"compatibility_analysis": "...", "strengths": ["..."], "concerns": ["..."], "skill_recommendations": ["..."], "career_advice": "...", "confidence_score": 0.0}
`

// Analyze renders the prompt, queries the model within the configured
// timeout, and validates the response against the embedded schema.
func (e *Engine) Analyze(ctx context.Context, c *models.Candidate, p *models.Position, r *models.MatchResult) (*models.Analysis, error) {
	prompt, err := ollama.RenderTemplate(analysisPrompt, promptData(c, p, r))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	ctxReq, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, err := e.client.Generate(ctxReq, e.cfg.Model, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	analysis, err := ParseAnalysis(out.Text)
	if err != nil {
		e.logger.Warn("analysis parse failed", "err", err, "raw", out.Text)
		return nil, fmt.Errorf("parse analysis: %w", err)
	}

	verrs, err := e.schema.ValidateBytes(ctxReq, []byte(extractJSON(out.Text)))
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if len(verrs) > 0 {
		var sb strings.Builder
		for _, v := range verrs {
			sb.WriteString(v.Message)
			sb.WriteString("; ")
		}
		return nil, fmt.Errorf("analysis does not match schema: %s", sb.String())
	}

	if analysis.ConfidenceScore == 0 {
		analysis.ConfidenceScore = AssessConfidence(analysis)
	}
	if analysis.ConfidenceScore < e.cfg.MinConfidence {
		e.logger.Info("low confidence analysis", "confidence", analysis.ConfidenceScore,
			"candidate_id", c.ID, "position_id", p.ID)
	}

	return analysis, nil
}

func promptData(c *models.Candidate, p *models.Position, r *models.MatchResult) map[string]any {
	skills := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		skills = append(skills, fmt.Sprintf("%s (%s, %.1fy)", s.SkillName, s.Proficiency, s.YearsExperience))
	}
	required := make([]string, 0, len(p.RequiredSkills))
	for _, s := range p.RequiredSkills {
		required = append(required, fmt.Sprintf("%s (%s)", s.SkillName, s.Importance))
	}
	missing := make([]string, 0, len(r.Details.MissingSkills))
	for _, m := range r.Details.MissingSkills {
		missing = append(missing, m.SkillName)
	}

	return map[string]any{
		"CandidateName":   c.Name,
		"Education":       string(c.Education),
		"Skills":          strings.Join(skills, ", "),
		"Title":           p.Title,
		"ExperienceLevel": string(p.ExperienceLevel),
		"Location":        p.LocationCity,
		"Required":        strings.Join(required, ", "),
		"Overall":         r.OverallScore,
		"SkillScore":      r.SkillScore,
		"ExperienceScore": r.ExperienceScore,
		"EducationScore":  r.EducationScore,
		"LocationScore":   r.LocationScore,
		"Missing":         strings.Join(missing, ", "),
	}
}

// ParseAnalysis extracts a JSON object from arbitrary model output and
// unmarshals it into an Analysis. Nil slices are normalized to empty ones.
func ParseAnalysis(s string) (*models.Analysis, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty response")
	}

	j := extractJSON(s)
	if j == "" {
		return nil, errors.New("no JSON object found in response")
	}

	var a models.Analysis
	if err := json.Unmarshal([]byte(j), &a); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Concerns == nil {
		a.Concerns = []string{}
	}
	if a.SkillRecommendations == nil {
		a.SkillRecommendations = []string{}
	}
	return &a, nil
}

// extractJSON returns the substring from the first '{' to the last '}' in the
// input. This handles model outputs that wrap JSON in text or markdown.
func extractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}

// AssessConfidence returns a heuristic confidence score when the model does
// not provide one: presence of narrative and concrete observations counts.
func AssessConfidence(a *models.Analysis) float64 {
	score := 0.0
	if strings.TrimSpace(a.Compatibility) != "" {
		score += 0.4
	}
	if len(a.Strengths)+len(a.Concerns) > 0 {
		score += 0.4
	}
	if strings.TrimSpace(a.CareerAdvice) != "" {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
