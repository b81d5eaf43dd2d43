package handler

import (
	"net/http"

	"github.com/datecast/datecast/internal/api/models"
	"github.com/datecast/datecast/internal/api/response"
	"github.com/datecast/datecast/internal/worker"
)

// AdminHandler handles operational trigger endpoints. These run an
// ingestion cycle synchronously, outside its normal schedule.
type AdminHandler struct {
	orchestrator *worker.Orchestrator
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orchestrator *worker.Orchestrator) *AdminHandler {
	return &AdminHandler{orchestrator: orchestrator}
}

// RefreshShortTerm handles POST /v1/admin/refresh/short-term.
func (h *AdminHandler) RefreshShortTerm(w http.ResponseWriter, r *http.Request) {
	if h.orchestrator == nil {
		response.ServiceUnavailable(w, r, "ingestion is not configured on this instance")
		return
	}

	result := h.orchestrator.RunShortTermCycle(r.Context())
	response.JSON(w, r, http.StatusOK, toRefreshResponse("short-term", result))
}

// RefreshMediumTerm handles POST /v1/admin/refresh/medium-term.
func (h *AdminHandler) RefreshMediumTerm(w http.ResponseWriter, r *http.Request) {
	if h.orchestrator == nil {
		response.ServiceUnavailable(w, r, "ingestion is not configured on this instance")
		return
	}

	result := h.orchestrator.RunMediumTermCycle(r.Context())
	response.JSON(w, r, http.StatusOK, toRefreshResponse("medium-term", result))
}

func toRefreshResponse(cycle string, result *worker.CycleResult) models.RefreshResponse {
	return models.RefreshResponse{
		Cycle:        cycle,
		Regions:      result.TotalRegions,
		Successful:   result.Successful,
		Failed:       result.Failed,
		Observations: result.Observations,
		Duration:     result.Duration.String(),
		StartedAt:    models.Timestamp(result.StartTime),
	}
}
