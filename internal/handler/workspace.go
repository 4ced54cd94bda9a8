package handler

import (
	"log/slog"
	"net/http"

	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// WorkspaceHandler handles workspace resolution requests
type WorkspaceHandler struct {
	workspaceService services.WorkspaceService
	logger           *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService services.WorkspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// GetWorkspace returns the caller's workspace, provisioning it on first
// contact
// GET /api/workspace
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	ws, err := h.workspaceService.Resolve(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ws)
}

// HealthCheck reports liveness
// GET /health
func (h *WorkspaceHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
