package handler

import (
	"log/slog"
	"net/http"

	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// BulkHandler handles multi-item move/delete/drop requests
type BulkHandler struct {
	bulkService services.BulkService
	logger      *slog.Logger
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulkService services.BulkService, logger *slog.Logger) *BulkHandler {
	return &BulkHandler{
		bulkService: bulkService,
		logger:      logger,
	}
}

// BulkMove moves a batch of files and folders into a target folder.
// POST /api/bulk/move
// Partial failures come back in the 200 body, not as an error status.
func (h *BulkHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	var req services.BulkMoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.WorkspaceID = httputil.GetWorkspaceID(r)

	result, err := h.bulkService.BulkMove(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// BulkDelete deletes a batch of files and folders
// POST /api/bulk/delete
func (h *BulkHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req services.BulkDeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.WorkspaceID = httputil.GetWorkspaceID(r)

	result, err := h.bulkService.BulkDelete(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Drop resolves a drag-and-drop gesture: moves within the workspace,
// copies when the payload came from another workspace.
// POST /api/drop
// target_folder_id "" or null means the workspace root.
func (h *BulkHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req services.DropRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.WorkspaceID = httputil.GetWorkspaceID(r)

	result, err := h.bulkService.Drop(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
