package handler

import (
	"log/slog"
	"net/http"

	models "cubby/internal/domain/models/drive"
	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

type createFolderBody struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

type updateFolderBody struct {
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 with the existing folder on duplicate names
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	var body createFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &services.CreateFolderRequest{
		WorkspaceID: workspaceID,
		Name:        body.Name,
		ParentID:    body.ParentID,
	})
	if err != nil {
		HandleCreateConflict(w, err, func(resourceID string) (*models.Folder, error) {
			return h.folderService.GetFolder(r.Context(), resourceID, workspaceID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder with its computed path and children
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	contents, err := h.folderService.ListChildren(r.Context(), &id, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// ListRoot lists the workspace root's folders and files
// GET /api/folders
func (h *FolderHandler) ListRoot(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	contents, err := h.folderService.ListChildren(r.Context(), nil, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// UpdateFolder renames and/or moves a folder.
// PATCH /api/folders/{id}
// "parent_id": null moves to root; an absent parent_id leaves the folder
// in place.
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	var body updateFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), id, &services.UpdateFolderRequest{
		WorkspaceID: workspaceID,
		Name:        body.Name,
		ParentID: services.OptionalParent{
			Present: body.ParentID.Present,
			Value:   body.ParentID.Value,
		},
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and everything under it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id, workspaceID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
