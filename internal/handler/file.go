package handler

import (
	"log/slog"
	"net/http"

	models "cubby/internal/domain/models/drive"
	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// maxUploadBytes caps a single-shot upload. Resumable transfers are an
// outer-layer concern; this endpoint only covers direct uploads.
const maxUploadBytes = 512 << 20

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService services.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService services.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

type updateFileBody struct {
	Name     *string                 `json:"name,omitempty"`
	FolderID httputil.OptionalString `json:"folder_id"`
}

// UploadFile stores the content and registers the metadata record.
// POST /api/files (multipart: "file" part, optional "folder_id",
// "uploader_name", "uploader_email" fields)
// Name collisions resolve to a suffixed name; the response carries the
// name actually assigned.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer part.Close()

	var folderID *string
	if v := r.FormValue("folder_id"); v != "" {
		folderID = &v
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	file, err := h.fileService.UploadFile(r.Context(), &services.UploadFileRequest{
		WorkspaceID:   workspaceID,
		FolderID:      folderID,
		Name:          name,
		Size:          header.Size,
		ContentType:   header.Header.Get("Content-Type"),
		Content:       part,
		UploaderName:  r.FormValue("uploader_name"),
		UploaderEmail: r.FormValue("uploader_email"),
	})
	if err != nil {
		HandleCreateConflict(w, err, func(resourceID string) (*models.File, error) {
			return h.fileService.GetFile(r.Context(), resourceID, workspaceID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves a file's metadata with its computed path
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	file, err := h.fileService.GetFile(r.Context(), id, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DownloadFile returns a time-limited download URL
// GET /api/files/{id}/download
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	url, err := h.fileService.DownloadURL(r.Context(), id, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// UpdateFile renames and/or moves a file.
// PATCH /api/files/{id}
// "folder_id": null moves to root; an absent folder_id leaves the file
// in place.
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	var body updateFileBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.fileService.UpdateFile(r.Context(), id, &services.UpdateFileRequest{
		WorkspaceID: workspaceID,
		Name:        body.Name,
		FolderID: services.OptionalParent{
			Present: body.FolderID.Present,
			Value:   body.FolderID.Value,
		},
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes the blob, then the record
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), id, workspaceID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
