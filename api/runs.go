package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/talentlink/matchengine/internal/jobs"
	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

type RunsHandler struct {
	runRepo repository.RunRepo
	queue   *jobs.WorkerPool
}

func NewRunsHandler(rr repository.RunRepo, queue *jobs.WorkerPool) *RunsHandler {
	return &RunsHandler{runRepo: rr, queue: queue}
}

type createRunRequest struct {
	Name         string  `json:"name"`
	CandidateIDs []int64 `json:"candidate_ids,omitempty"`
	PositionIDs  []int64 `json:"position_ids,omitempty"`
	MinScore     float64 `json:"min_score"`
	Limit        int     `json:"limit"`
}

// CreateRun records a batch run and enqueues it for background execution.
func (h *RunsHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.MinScore < 0 || req.MinScore > 100 {
		http.Error(w, "min_score must be between 0 and 100", http.StatusBadRequest)
		return
	}

	run := &models.MatchRun{
		Name:         req.Name,
		Status:       models.RunPending,
		CandidateIDs: req.CandidateIDs,
		PositionIDs:  req.PositionIDs,
		MinScore:     req.MinScore,
		Limit:        req.Limit,
		Created:      time.Now().Unix(),
	}
	runID, err := h.runRepo.CreateRun(r.Context(), run)
	if err != nil {
		http.Error(w, "failed to create run", http.StatusInternalServerError)
		return
	}

	if _, err := h.queue.Enqueue(r.Context(), jobs.TypeRunBatch, jobs.RunBatchPayload{RunID: runID}, 100, 3); err != nil {
		run.ID = runID
		run.Status = models.RunFailed
		run.ErrorMessage = "failed to enqueue run"
		_ = h.runRepo.UpdateRun(r.Context(), run)
		http.Error(w, "failed to enqueue run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": runID, "status": models.RunPending}, http.StatusAccepted)
}

func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	run, err := h.runRepo.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, run, http.StatusOK)
}
