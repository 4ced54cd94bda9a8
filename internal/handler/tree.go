package handler

import (
	"log/slog"
	"net/http"

	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// TreeHandler handles workspace tree requests
type TreeHandler struct {
	treeService services.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService services.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested folder/file tree for the caller's workspace
// GET /api/workspace/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	tree, err := h.treeService.GetWorkspaceTree(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
