package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

type PositionsHandler struct {
	positionRepo repository.PositionRepo
}

func NewPositionsHandler(pr repository.PositionRepo) *PositionsHandler {
	return &PositionsHandler{positionRepo: pr}
}

func (h *PositionsHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var p models.Position
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	for _, s := range p.RequiredSkills {
		if strings.TrimSpace(s.SkillName) == "" {
			http.Error(w, "skill_name is required for every required skill", http.StatusBadRequest)
			return
		}
		if s.Weight < 0 || s.MinExperienceYears < 0 {
			http.Error(w, "required skill weight and min_experience_years must not be negative", http.StatusBadRequest)
			return
		}
	}
	for _, s := range p.PreferredSkills {
		if strings.TrimSpace(s.SkillName) == "" {
			http.Error(w, "skill_name is required for every preferred skill", http.StatusBadRequest)
			return
		}
	}

	id, err := h.positionRepo.CreatePosition(r.Context(), &p)
	if err != nil {
		http.Error(w, "failed to store position", http.StatusInternalServerError)
		return
	}

	writeJSON(w, createResponse{ID: id}, http.StatusCreated)
}

func (h *PositionsHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.positionRepo.GetPosition(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "position not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load position", http.StatusInternalServerError)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

func (h *PositionsHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "ids")
	if err != nil {
		http.Error(w, "invalid ids", http.StatusBadRequest)
		return
	}

	ps, err := h.positionRepo.ListPositions(r.Context(), ids)
	if err != nil {
		http.Error(w, "failed to list positions", http.StatusInternalServerError)
		return
	}
	if ps == nil {
		ps = []models.Position{}
	}

	writeJSON(w, map[string]any{"total": len(ps), "items": ps}, http.StatusOK)
}
