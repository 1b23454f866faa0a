package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

type ConfigsHandler struct {
	configRepo repository.ConfigRepo
}

func NewConfigsHandler(cr repository.ConfigRepo) *ConfigsHandler {
	return &ConfigsHandler{configRepo: cr}
}

func (h *ConfigsHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.AlgorithmConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	id, err := h.configRepo.SaveConfig(r.Context(), &cfg)
	if err != nil {
		if errors.Is(err, models.ErrInvalidWeights) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to store config", http.StatusInternalServerError)
		return
	}

	writeJSON(w, createResponse{ID: id}, http.StatusCreated)
}

func (h *ConfigsHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	cfgs, err := h.configRepo.ListConfigs(r.Context())
	if err != nil {
		http.Error(w, "failed to list configs", http.StatusInternalServerError)
		return
	}
	if cfgs == nil {
		cfgs = []models.AlgorithmConfig{}
	}

	writeJSON(w, map[string]any{"total": len(cfgs), "items": cfgs}, http.StatusOK)
}

func (h *ConfigsHandler) GetActiveConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configRepo.GetActiveConfig(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "no active config", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load config", http.StatusInternalServerError)
		return
	}

	writeJSON(w, cfg, http.StatusOK)
}

type activateRequest struct {
	Name string `json:"name"`
}

func (h *ConfigsHandler) ActivateConfig(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := h.configRepo.ActivateConfig(r.Context(), req.Name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "config not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to activate config", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"activated": req.Name}, http.StatusOK)
}
