package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	services "cubby/internal/domain/services/drive"
	"cubby/internal/httputil"
)

// ArchiveHandler streams folder zip downloads
type ArchiveHandler struct {
	archiveService services.ArchiveService
	logger         *slog.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(archiveService services.ArchiveService, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		logger:         logger,
	}
}

// DownloadArchive streams a zip of the folder's full contents.
// GET /api/folders/{id}/archive
// The filename derives from the folder's display name. The build fails
// fast on metadata errors before producing any output, and headers only
// commit on the first written byte, so those errors still go out as
// normal error responses; a blob failure mid-stream can only truncate
// the download.
func (h *ArchiveHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	workspaceID := httputil.GetWorkspaceID(r)

	folderID := r.PathValue("id")
	if folderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	name, err := h.archiveService.ArchiveName(r.Context(), folderID, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", disposition)

	stream := &trackedWriter{w: w}
	if err := h.archiveService.BuildArchive(r.Context(), folderID, workspaceID, stream); err != nil {
		if stream.written == 0 {
			// Nothing reached the client yet, so the zip headers are
			// still uncommitted and the error can go out normally
			w.Header().Del("Content-Disposition")
			handleError(w, err)
			return
		}
		h.logger.Error("archive stream failed",
			"folder_id", folderID,
			"workspace_id", workspaceID,
			"error", err,
		)
	}
}

// trackedWriter counts bytes so the handler knows whether the response
// has been committed when the archive build fails
type trackedWriter struct {
	w       io.Writer
	written int64
}

func (t *trackedWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	t.written += int64(n)
	return n, err
}
