package handler

import (
	"log/slog"
	"net/http"

	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// LinkHandler handles folder-link binding requests
type LinkHandler struct {
	binder services.LinkBinder
	logger *slog.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(binder services.LinkBinder, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		binder: binder,
		logger: logger,
	}
}

type bindExistingBody struct {
	LinkID string `json:"link_id"`
}

// BindNew creates a link named after the folder and binds it
// POST /api/folders/{id}/link
func (h *LinkHandler) BindNew(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	folderID := r.PathValue("id")
	if folderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	var req services.BindNewRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	req.WorkspaceID = workspaceID
	req.FolderID = folderID

	link, err := h.binder.BindNew(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, link)
}

// BindExisting binds a previously unbound link to the folder
// PUT /api/folders/{id}/link
func (h *LinkHandler) BindExisting(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	folderID := r.PathValue("id")
	if folderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	var body bindExistingBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.LinkID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "link_id is required")
		return
	}

	link, err := h.binder.BindExisting(r.Context(), folderID, body.LinkID, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, link)
}

// Unbind detaches and deactivates the folder's link. Succeeds as a
// no-op when the folder has no binding.
// DELETE /api/folders/{id}/link
func (h *LinkHandler) Unbind(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	folderID := r.PathValue("id")
	if folderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	if err := h.binder.Unbind(r.Context(), folderID, workspaceID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLinks lists all links in the workspace, bound and unbound
// GET /api/links
func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	links, err := h.binder.ListLinks(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, links)
}
