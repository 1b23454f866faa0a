package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/talentlink/matchengine/internal/cache"
	"github.com/talentlink/matchengine/internal/match"
	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

type MatchesHandler struct {
	engine     *match.Engine
	configRepo repository.ConfigRepo
	resultRepo repository.ResultRepo
	topCache   *cache.TopMatches
}

func NewMatchesHandler(engine *match.Engine, cr repository.ConfigRepo, rr repository.ResultRepo, tc *cache.TopMatches) *MatchesHandler {
	return &MatchesHandler{engine: engine, configRepo: cr, resultRepo: rr, topCache: tc}
}

type calculateRequest struct {
	CandidateID int64  `json:"candidate_id"`
	PositionID  int64  `json:"position_id"`
	ConfigName  string `json:"config_name,omitempty"`
}

func (h *MatchesHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.CandidateID <= 0 || req.PositionID <= 0 {
		http.Error(w, "candidate_id and position_id are required", http.StatusBadRequest)
		return
	}

	cfg, err := h.configRepo.GetActiveConfig(r.Context(), req.ConfigName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "no active algorithm config", http.StatusConflict)
			return
		}
		http.Error(w, "failed to load config", http.StatusInternalServerError)
		return
	}

	res, err := h.engine.CalculatePair(r.Context(), req.CandidateID, req.PositionID, cfg)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "candidate or position not found", http.StatusNotFound)
		case errors.Is(err, models.ErrInvalidWeights):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to calculate match", http.StatusInternalServerError)
		}
		return
	}

	h.topCache.InvalidateCandidate(req.CandidateID)
	h.topCache.InvalidatePosition(req.PositionID)

	writeJSON(w, res, http.StatusOK)
}

func (h *MatchesHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	candidateID, err := pathID(r, "candidate_id")
	if err != nil {
		http.Error(w, "invalid candidate_id", http.StatusBadRequest)
		return
	}
	positionID, err := pathID(r, "position_id")
	if err != nil {
		http.Error(w, "invalid position_id", http.StatusBadRequest)
		return
	}

	res, err := h.resultRepo.GetResult(r.Context(), candidateID, positionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "match result not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load match result", http.StatusInternalServerError)
		return
	}

	writeJSON(w, res, http.StatusOK)
}

func (h *MatchesHandler) TopForCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	minScore, limit := rankingParams(r)

	key := cache.CandidateKey(id, minScore, limit)
	if results, ok := h.topCache.Get(key); ok {
		writeTop(w, results)
		return
	}

	results, err := h.resultRepo.TopForCandidate(r.Context(), id, minScore, limit)
	if err != nil {
		http.Error(w, "failed to load matches", http.StatusInternalServerError)
		return
	}

	h.topCache.Set(key, results)
	writeTop(w, results)
}

func (h *MatchesHandler) TopForPosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	minScore, limit := rankingParams(r)

	key := cache.PositionKey(id, minScore, limit)
	if results, ok := h.topCache.Get(key); ok {
		writeTop(w, results)
		return
	}

	results, err := h.resultRepo.TopForPosition(r.Context(), id, minScore, limit)
	if err != nil {
		http.Error(w, "failed to load matches", http.StatusInternalServerError)
		return
	}

	h.topCache.Set(key, results)
	writeTop(w, results)
}

func (h *MatchesHandler) StatsForCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	stats, err := h.resultRepo.StatsForCandidate(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

func (h *MatchesHandler) StatsForPosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	stats, err := h.resultRepo.StatsForPosition(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

func rankingParams(r *http.Request) (minScore float64, limit int) {
	q := r.URL.Query()
	limit = 10
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if m := q.Get("min_score"); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil && v >= 0 && v <= 100 {
			minScore = v
		}
	}
	return minScore, limit
}

func writeTop(w http.ResponseWriter, results []models.MatchResult) {
	if results == nil {
		results = []models.MatchResult{}
	}
	items := make([]map[string]any, 0, len(results))
	for i := range results {
		r := &results[i]
		items = append(items, map[string]any{
			"result": r,
			"level":  r.Level(),
		})
	}
	writeJSON(w, map[string]any{"total": len(results), "items": items}, http.StatusOK)
}
