package drive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
	driveRepo "cubby/internal/domain/repositories/drive"
	services "cubby/internal/domain/services/drive"
	"cubby/internal/domain/storage"
)

type archiveService struct {
	folderRepo driveRepo.FolderRepository
	blobs      storage.BlobStore
	logger     *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(
	folderRepo driveRepo.FolderRepository,
	blobs storage.BlobStore,
	logger *slog.Logger,
) services.ArchiveService {
	return &archiveService{
		folderRepo: folderRepo,
		blobs:      blobs,
		logger:     logger,
	}
}

// BuildArchive writes a zip of everything under folderID to w. The
// descendant set comes from one recursive query; entry names are display
// paths relative to the folder, never encoded storage keys. Folders with
// no descendant files get explicit empty-directory entries so a
// deliberately empty folder survives the round trip.
func (s *archiveService) BuildArchive(ctx context.Context, folderID, workspaceID string, w io.Writer) error {
	if _, err := s.folderRepo.GetByID(ctx, folderID, workspaceID); err != nil {
		return err
	}

	// Fail fast before any byte reaches the writer: a failed or malformed
	// descendant query must not leave the caller with a partial archive
	set, err := s.folderRepo.ListDescendants(ctx, folderID, workspaceID)
	if err != nil {
		return fmt.Errorf("list descendants: %w", err)
	}

	zw := zip.NewWriter(w)

	for _, folder := range set.Folders {
		if hasDescendantFile(set, folder.RelPath) {
			continue
		}
		if _, err := zw.Create(folder.RelPath + "/"); err != nil {
			return fmt.Errorf("write directory entry %q: %w", folder.RelPath, err)
		}
	}

	for _, file := range set.Files {
		header := &zip.FileHeader{
			Name:   file.RelPath,
			Method: zip.Deflate,
		}
		header.SetMode(0644)

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("write file entry %q: %w", file.RelPath, err)
		}

		if err := s.copyBlob(ctx, file.StorageKey, entry); err != nil {
			return fmt.Errorf("archive %q: %w", file.RelPath, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	s.logger.Info("archive built",
		"folder_id", folderID,
		"workspace_id", workspaceID,
		"folders", len(set.Folders),
		"files", len(set.Files),
	)

	return nil
}

// ArchiveName returns the suggested download filename ("{folder}.zip")
func (s *archiveService) ArchiveName(ctx context.Context, folderID, workspaceID string) (string, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		return "", err
	}
	return folder.Name + ".zip", nil
}

func (s *archiveService) copyBlob(ctx context.Context, key string, entry io.Writer) error {
	rc, err := s.blobs.Open(ctx, key)
	if err != nil {
		return &domain.StorageError{Op: "open", Key: key, Err: err}
	}
	defer rc.Close()

	if _, err := io.Copy(entry, rc); err != nil {
		return &domain.StorageError{Op: "read", Key: key, Err: err}
	}
	return nil
}

// hasDescendantFile reports whether any file in the set lives at or
// below the folder at relPath
func hasDescendantFile(set *models.DescendantSet, relPath string) bool {
	prefix := relPath + "/"
	for _, file := range set.Files {
		if strings.HasPrefix(file.RelPath, prefix) {
			return true
		}
	}
	return false
}
