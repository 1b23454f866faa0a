package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	migrations "github.com/talentlink/matchengine/db"
	"github.com/talentlink/matchengine/internal/db"
	"github.com/talentlink/matchengine/internal/repository/sqlite"
	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()

	d, err := db.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, migrations.Migrations); err != nil {
		t.Fatalf("db.Migrate: %v", err)
	}

	return sqlite.New(d)
}

func sampleCandidate() *models.Candidate {
	return &models.Candidate{
		Name:               "Ada",
		Education:          models.EducationMaster,
		PreferredLocations: []string{"Berlin", "Hamburg"},
		Skills: []models.CandidateSkill{
			{SkillName: "Python", Proficiency: models.ProficiencyAdvanced, YearsExperience: 3},
			{SkillName: "Docker", Proficiency: models.ProficiencyIntermediate, YearsExperience: 2},
		},
	}
}

func samplePosition() *models.Position {
	return &models.Position{
		Title:           "Backend Engineer",
		ExperienceLevel: models.LevelMid,
		LocationCity:    "Berlin",
		RemoteOption:    models.RemoteHybrid,
		RequiredSkills: []models.RequiredSkill{
			{SkillName: "Python", Importance: models.ImportanceCritical, MinExperienceYears: 2, Weight: 1.0},
			{SkillName: "SQL", Importance: models.ImportanceImportant, MinExperienceYears: 1, Weight: 0.5},
		},
		PreferredSkills: []models.PreferredSkill{
			{SkillName: "Docker", BonusPoints: 0.5},
		},
	}
}

func TestCandidateRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	c := sampleCandidate()
	id, err := repo.CreateCandidate(ctx, c)
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	got, err := repo.GetCandidate(ctx, id)
	if err != nil {
		t.Fatalf("GetCandidate: %v", err)
	}
	if got.Name != c.Name || got.Education != c.Education {
		t.Fatalf("candidate mismatch: %+v", got)
	}
	if len(got.PreferredLocations) != 2 || got.PreferredLocations[0] != "Berlin" {
		t.Fatalf("preferred locations mismatch: %v", got.PreferredLocations)
	}
	if len(got.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(got.Skills))
	}
}

func TestGetCandidate_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetCandidate(context.Background(), 9999)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCandidates(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	var ids []int64
	for range 3 {
		id, err := repo.CreateCandidate(ctx, sampleCandidate())
		if err != nil {
			t.Fatalf("CreateCandidate: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := repo.ListCandidates(ctx, nil)
	if err != nil {
		t.Fatalf("ListCandidates(all): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(all))
	}

	subset, err := repo.ListCandidates(ctx, ids[:2])
	if err != nil {
		t.Fatalf("ListCandidates(subset): %v", err)
	}
	if len(subset) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(subset))
	}
}

func TestPositionRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p := samplePosition()
	id, err := repo.CreatePosition(ctx, p)
	if err != nil {
		t.Fatalf("CreatePosition: %v", err)
	}

	got, err := repo.GetPosition(ctx, id)
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if got.Title != p.Title || got.RemoteOption != p.RemoteOption {
		t.Fatalf("position mismatch: %+v", got)
	}
	if len(got.RequiredSkills) != 2 || got.RequiredSkills[0].SkillName != "Python" {
		t.Fatalf("required skills mismatch: %v", got.RequiredSkills)
	}
	if len(got.PreferredSkills) != 1 || got.PreferredSkills[0].BonusPoints != 0.5 {
		t.Fatalf("preferred skills mismatch: %v", got.PreferredSkills)
	}
}

func TestConfigSaveAndActivate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	cfg := models.DefaultConfig()
	if _, err := repo.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	alt := &models.AlgorithmConfig{
		Name: "skills-heavy", SkillWeight: 0.7, ExperienceWeight: 0.1, EducationWeight: 0.1, LocationWeight: 0.1,
	}
	if _, err := repo.SaveConfig(ctx, alt); err != nil {
		t.Fatalf("SaveConfig alt: %v", err)
	}

	active, err := repo.GetActiveConfig(ctx, "")
	if err != nil {
		t.Fatalf("GetActiveConfig: %v", err)
	}
	if active.Name != "default" {
		t.Fatalf("expected default to be active, got %q", active.Name)
	}

	if err := repo.ActivateConfig(ctx, "skills-heavy"); err != nil {
		t.Fatalf("ActivateConfig: %v", err)
	}
	active, err = repo.GetActiveConfig(ctx, "")
	if err != nil {
		t.Fatalf("GetActiveConfig after activate: %v", err)
	}
	if active.Name != "skills-heavy" {
		t.Fatalf("expected skills-heavy to be active, got %q", active.Name)
	}

	// saving an existing name updates in place, no duplicate rows
	alt.Description = "updated"
	if _, err := repo.SaveConfig(ctx, alt); err != nil {
		t.Fatalf("SaveConfig update: %v", err)
	}
	list, err := repo.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 configs, got %d", len(list))
	}
}

func TestSaveConfig_RejectsInvalidWeights(t *testing.T) {
	repo := setupRepo(t)

	bad := &models.AlgorithmConfig{Name: "bad", SkillWeight: 0.9, ExperienceWeight: 0.9}
	if _, err := repo.SaveConfig(context.Background(), bad); !errors.Is(err, models.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestActivateConfig_NotFound(t *testing.T) {
	repo := setupRepo(t)

	if err := repo.ActivateConfig(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func storedResult(candidateID, positionID int64, score float64) *models.MatchResult {
	return &models.MatchResult{
		CandidateID:     candidateID,
		PositionID:      positionID,
		OverallScore:    score,
		SkillScore:      score,
		ExperienceScore: score,
		EducationScore:  score,
		LocationScore:   score,
		Details: models.MatchDetails{
			RequiredSkills: 1,
			MatchedSkills:  1,
			MissingSkills:  []models.MissingSkillEntry{},
			BonusList:      []models.BonusSkillEntry{},
		},
		RecommendationReasons:  []string{"meets 1/1 required skills"},
		ImprovementSuggestions: []string{},
		SkillDetails: []models.SkillMatchDetail{
			{SkillName: "Python", CandidateHasSkill: true, Proficiency: models.ProficiencyAdvanced, YearsExperience: 3, Required: true, Importance: models.ImportanceCritical, MinExperienceYears: 2, Weight: 1.0, Score: score},
		},
	}
}

func seedResultPair(t *testing.T, repo *sqlite.SQLiteRepo) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	candidateID, err := repo.CreateCandidate(ctx, sampleCandidate())
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	positionID, err := repo.CreatePosition(ctx, samplePosition())
	if err != nil {
		t.Fatalf("CreatePosition: %v", err)
	}
	return candidateID, positionID
}

func TestUpsertResult_Idempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	candidateID, positionID := seedResultPair(t, repo)

	first := storedResult(candidateID, positionID, 70)
	id1, err := repo.UpsertResult(ctx, first)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// attach an analysis, then recalculate; the stale analysis must not survive
	if err := repo.SetAnalysis(ctx, id1, models.NeutralAnalysis()); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}

	second := storedResult(candidateID, positionID, 85)
	second.SkillDetails = append(second.SkillDetails, models.SkillMatchDetail{
		SkillName: "SQL", Required: true, Importance: models.ImportanceImportant, MinExperienceYears: 1, Weight: 0.5, IsMissingSkill: true,
	})
	id2, err := repo.UpsertResult(ctx, second)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("upsert must reuse the row: %d vs %d", id1, id2)
	}

	got, err := repo.GetResult(ctx, candidateID, positionID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.OverallScore != 85 {
		t.Fatalf("expected updated score 85, got %v", got.OverallScore)
	}
	if got.Analysis != nil {
		t.Fatalf("recalculation must clear the stored analysis, got %+v", got.Analysis)
	}
	if len(got.SkillDetails) != 2 {
		t.Fatalf("detail rows must match the second calculation only, got %d rows", len(got.SkillDetails))
	}
}

func TestSetAnalysis_NotFound(t *testing.T) {
	repo := setupRepo(t)

	err := repo.SetAnalysis(context.Background(), 12345, models.NeutralAnalysis())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTopForPosition_OrderAndFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	positionID, err := repo.CreatePosition(ctx, samplePosition())
	if err != nil {
		t.Fatalf("CreatePosition: %v", err)
	}

	scores := []float64{55, 91, 72}
	for _, score := range scores {
		candidateID, err := repo.CreateCandidate(ctx, sampleCandidate())
		if err != nil {
			t.Fatalf("CreateCandidate: %v", err)
		}
		if _, err := repo.UpsertResult(ctx, storedResult(candidateID, positionID, score)); err != nil {
			t.Fatalf("UpsertResult: %v", err)
		}
	}

	top, err := repo.TopForPosition(ctx, positionID, 60, 10)
	if err != nil {
		t.Fatalf("TopForPosition: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 results above 60, got %d", len(top))
	}
	if top[0].OverallScore != 91 || top[1].OverallScore != 72 {
		t.Fatalf("results not ordered by score: %v, %v", top[0].OverallScore, top[1].OverallScore)
	}

	limited, err := repo.TopForPosition(ctx, positionID, 0, 1)
	if err != nil {
		t.Fatalf("TopForPosition limited: %v", err)
	}
	if len(limited) != 1 || limited[0].OverallScore != 91 {
		t.Fatalf("limit should keep only the best result, got %+v", limited)
	}
}

func TestStatsForPosition(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	positionID, err := repo.CreatePosition(ctx, samplePosition())
	if err != nil {
		t.Fatalf("CreatePosition: %v", err)
	}
	for _, score := range []float64{85, 70, 40} {
		candidateID, err := repo.CreateCandidate(ctx, sampleCandidate())
		if err != nil {
			t.Fatalf("CreateCandidate: %v", err)
		}
		if _, err := repo.UpsertResult(ctx, storedResult(candidateID, positionID, score)); err != nil {
			t.Fatalf("UpsertResult: %v", err)
		}
	}

	stats, err := repo.StatsForPosition(ctx, positionID)
	if err != nil {
		t.Fatalf("StatsForPosition: %v", err)
	}
	if stats.TotalMatches != 3 {
		t.Fatalf("expected 3 matches, got %d", stats.TotalMatches)
	}
	if stats.HighQuality != 1 || stats.MediumQuality != 1 {
		t.Fatalf("unexpected quality buckets: %+v", stats)
	}
	if stats.TopScore != 85 {
		t.Fatalf("expected top score 85, got %v", stats.TopScore)
	}

	empty, err := repo.StatsForPosition(ctx, 9999)
	if err != nil {
		t.Fatalf("StatsForPosition empty: %v", err)
	}
	if empty.TotalMatches != 0 || empty.TopScore != 0 {
		t.Fatalf("expected zeroed stats, got %+v", empty)
	}
}

func TestRunLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	run := &models.MatchRun{
		Name:         "nightly",
		Status:       models.RunPending,
		CandidateIDs: []int64{1, 2},
		MinScore:     50,
		Limit:        20,
	}
	id, err := repo.CreateRun(ctx, run)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := repo.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != models.RunPending || got.Name != "nightly" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if len(got.CandidateIDs) != 2 {
		t.Fatalf("candidate ids not persisted: %+v", got)
	}

	got.Status = models.RunCompleted
	got.TotalPairs = 4
	got.TotalMatches = 3
	got.FailedPairs = 1
	if err := repo.UpdateRun(ctx, got); err != nil {
		t.Fatalf("UpdateRun: %v", err)
	}

	final, err := repo.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun after update: %v", err)
	}
	if final.Status != models.RunCompleted || final.TotalPairs != 4 || final.FailedPairs != 1 {
		t.Fatalf("update not applied: %+v", final)
	}
}

func TestRecruiterRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	rec := &models.Recruiter{Name: "Sam", Email: "sam@example.com", PasswordHash: "hash"}
	if _, err := repo.CreateRecruiter(ctx, rec); err != nil {
		t.Fatalf("CreateRecruiter: %v", err)
	}

	got, err := repo.GetRecruiterByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("GetRecruiterByEmail: %v", err)
	}
	if got.Name != "Sam" || got.PasswordHash != "hash" {
		t.Fatalf("recruiter mismatch: %+v", got)
	}

	if _, err := repo.GetRecruiterByEmail(ctx, "missing@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
