package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

type CandidatesHandler struct {
	candidateRepo repository.CandidateRepo
}

func NewCandidatesHandler(cr repository.CandidateRepo) *CandidatesHandler {
	return &CandidatesHandler{candidateRepo: cr}
}

type createResponse struct {
	ID int64 `json:"id"`
}

func (h *CandidatesHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var c models.Candidate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	for _, s := range c.Skills {
		if strings.TrimSpace(s.SkillName) == "" {
			http.Error(w, "skill_name is required for every skill", http.StatusBadRequest)
			return
		}
		if s.YearsExperience < 0 {
			http.Error(w, "years_experience must not be negative", http.StatusBadRequest)
			return
		}
	}

	id, err := h.candidateRepo.CreateCandidate(r.Context(), &c)
	if err != nil {
		http.Error(w, "failed to store candidate", http.StatusInternalServerError)
		return
	}

	writeJSON(w, createResponse{ID: id}, http.StatusCreated)
}

func (h *CandidatesHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.candidateRepo.GetCandidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "candidate not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load candidate", http.StatusInternalServerError)
		return
	}

	writeJSON(w, c, http.StatusOK)
}

func (h *CandidatesHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "ids")
	if err != nil {
		http.Error(w, "invalid ids", http.StatusBadRequest)
		return
	}

	cs, err := h.candidateRepo.ListCandidates(r.Context(), ids)
	if err != nil {
		http.Error(w, "failed to list candidates", http.StatusInternalServerError)
		return
	}
	if cs == nil {
		cs = []models.Candidate{}
	}

	writeJSON(w, map[string]any{"total": len(cs), "items": cs}, http.StatusOK)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// queryIDs parses a comma separated list of positive integers. An absent
// parameter yields nil, which repositories treat as "all".
func queryIDs(r *http.Request, name string) ([]int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("invalid id list")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
