package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"cubby/internal/config"
	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
	"cubby/internal/domain/repositories"
	driveRepo "cubby/internal/domain/repositories/drive"
	services "cubby/internal/domain/services/drive"
	"cubby/internal/domain/storage"
)

// downloadURLTTL is how long a presigned download URL stays valid
const downloadURLTTL = 15 * time.Minute

type fileService struct {
	fileRepo   driveRepo.FileRepository
	folderRepo driveRepo.FolderRepository
	blobs      storage.BlobStore
	txManager  repositories.TransactionManager
	limits     config.Limits
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo driveRepo.FileRepository,
	folderRepo driveRepo.FolderRepository,
	blobs storage.BlobStore,
	txManager repositories.TransactionManager,
	limits config.Limits,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		blobs:      blobs,
		txManager:  txManager,
		limits:     limits,
		logger:     logger,
	}
}

// UploadFile stores the content through the blob boundary and creates the
// metadata record. The name probe checks both the sibling record set and
// the blob store: a key can be occupied by a prior failed upload even
// when no record points at it, and skipping the second source causes the
// write-time conflict the resolver exists to prevent.
func (s *fileService) UploadFile(ctx context.Context, req *services.UploadFileRequest) (*models.File, error) {
	if err := s.validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID, req.WorkspaceID); err != nil {
			return nil, fmt.Errorf("destination folder not found: %w", err)
		}
	}

	siblingCheck, err := s.siblingFileCheck(ctx, req.FolderID, req.WorkspaceID, "")
	if err != nil {
		return nil, err
	}
	blobCheck := func(ctx context.Context, name string) (bool, error) {
		return s.blobs.Exists(ctx, storageKeyFor(req.WorkspaceID, req.FolderID, name))
	}

	name, err := ResolveName(ctx, req.Name, s.limits.NameProbeBudget, CombinedExists(siblingCheck, blobCheck))
	if err != nil {
		return nil, err
	}

	storageKey := storageKeyFor(req.WorkspaceID, req.FolderID, name)
	if err := s.blobs.Put(ctx, storageKey, req.Content, req.Size, req.ContentType); err != nil {
		return nil, &domain.StorageError{Op: "put", Key: storageKey, Err: err}
	}

	file := &models.File{
		WorkspaceID:   req.WorkspaceID,
		FolderID:      req.FolderID,
		Name:          name,
		Size:          req.Size,
		ContentType:   req.ContentType,
		StorageKey:    storageKey,
		UploaderName:  req.UploaderName,
		UploaderEmail: req.UploaderEmail,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// The blob is in; without a record it is unreachable, so try to
		// take it back out rather than leak paid storage
		if cleanupErr := s.blobs.Delete(ctx, storageKey); cleanupErr != nil && !errors.Is(cleanupErr, storage.ErrBlobNotFound) {
			s.logger.Error("orphaned blob after failed record create",
				"storage_key", storageKey,
				"error", cleanupErr,
			)
		}
		return nil, err
	}

	s.computePath(ctx, file)

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"workspace_id", req.WorkspaceID,
		"folder_id", req.FolderID,
		"size", req.Size,
	)

	return file, nil
}

// GetFile retrieves a file with its computed path
func (s *fileService) GetFile(ctx context.Context, id, workspaceID string) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id, workspaceID)
	if err != nil {
		return nil, err
	}

	s.computePath(ctx, file)
	return file, nil
}

// UpdateFile renames and/or moves a file
func (s *fileService) UpdateFile(ctx context.Context, id string, req *services.UpdateFileRequest) (*models.File, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file, err := s.fileRepo.GetByID(ctx, id, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	// Normalize the root sentinel to nil
	if req.FolderID.Present && req.FolderID.Value != nil && *req.FolderID.Value == "" {
		req.FolderID.Value = nil
	}

	rename := req.Name != nil && *req.Name != file.Name
	move := req.FolderID.Present && !sameParent(file.FolderID, req.FolderID.Value)

	if !rename && !move {
		s.computePath(ctx, file)
		return file, nil
	}

	if move {
		if req.FolderID.Value != nil {
			if _, err := s.folderRepo.GetByID(ctx, *req.FolderID.Value, req.WorkspaceID); err != nil {
				return nil, fmt.Errorf("destination folder not found: %w", err)
			}
		}
		file.FolderID = req.FolderID.Value
	}

	if rename {
		file.Name = *req.Name
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if move {
			// Probe the destination siblings at write time; explicit
			// renames surface conflicts instead of being auto-suffixed
			siblingCheck, err := s.siblingFileCheck(txCtx, file.FolderID, req.WorkspaceID, file.ID)
			if err != nil {
				return err
			}
			name, err := ResolveName(txCtx, file.Name, s.limits.NameProbeBudget, siblingCheck)
			if err != nil {
				return err
			}
			file.Name = name
		}

		file.UpdatedAt = time.Now()
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	s.computePath(ctx, file)

	s.logger.Info("file updated",
		"id", file.ID,
		"name", file.Name,
		"folder_id", file.FolderID,
		"moved", move,
		"renamed", rename,
	)

	return file, nil
}

// MoveFile relocates a file into another folder (nil = root)
func (s *fileService) MoveFile(ctx context.Context, id string, newFolderID *string, workspaceID string) (*models.File, error) {
	return s.UpdateFile(ctx, id, &services.UpdateFileRequest{
		WorkspaceID: workspaceID,
		FolderID:    services.OptionalParent{Present: true, Value: newFolderID},
	})
}

// CopyFile duplicates a file's blob and record into a target folder. The
// copy gets a fresh id and storage key, fully detached from the original;
// uploader attribution is not carried over.
func (s *fileService) CopyFile(ctx context.Context, id, sourceWorkspaceID string, req *services.CopyFileRequest) (*models.File, error) {
	if req.WorkspaceID == "" {
		return nil, fmt.Errorf("%w: destination workspace is required", domain.ErrValidation)
	}

	source, err := s.fileRepo.GetByID(ctx, id, sourceWorkspaceID)
	if err != nil {
		return nil, err
	}

	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID, req.WorkspaceID); err != nil {
			return nil, fmt.Errorf("destination folder not found: %w", err)
		}
	}

	siblingCheck, err := s.siblingFileCheck(ctx, req.FolderID, req.WorkspaceID, "")
	if err != nil {
		return nil, err
	}
	blobCheck := func(ctx context.Context, name string) (bool, error) {
		return s.blobs.Exists(ctx, storageKeyFor(req.WorkspaceID, req.FolderID, name))
	}

	name, err := ResolveName(ctx, source.Name, s.limits.NameProbeBudget, CombinedExists(siblingCheck, blobCheck))
	if err != nil {
		return nil, err
	}

	dstKey := storageKeyFor(req.WorkspaceID, req.FolderID, name)
	if err := s.blobs.Copy(ctx, source.StorageKey, dstKey); err != nil {
		return nil, &domain.StorageError{Op: "copy", Key: source.StorageKey, Err: err}
	}

	file := &models.File{
		WorkspaceID: req.WorkspaceID,
		FolderID:    req.FolderID,
		Name:        name,
		Size:        source.Size,
		ContentType: source.ContentType,
		StorageKey:  dstKey,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		if cleanupErr := s.blobs.Delete(ctx, dstKey); cleanupErr != nil && !errors.Is(cleanupErr, storage.ErrBlobNotFound) {
			s.logger.Error("orphaned blob after failed copy record create",
				"storage_key", dstKey,
				"error", cleanupErr,
			)
		}
		return nil, err
	}

	s.computePath(ctx, file)

	s.logger.Info("file copied",
		"source_id", id,
		"id", file.ID,
		"name", file.Name,
		"workspace_id", req.WorkspaceID,
	)

	return file, nil
}

// DeleteFile removes the blob first, then the record. A blob failure
// other than "not found" keeps the record so the system never holds a
// paid blob with no record pointing at it.
func (s *fileService) DeleteFile(ctx context.Context, id, workspaceID string) error {
	file, err := s.fileRepo.GetByID(ctx, id, workspaceID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		return &domain.StorageError{Op: "delete", Key: file.StorageKey, Err: err}
	}

	if err := s.fileRepo.Delete(ctx, id, workspaceID); err != nil {
		return err
	}

	s.logger.Info("file deleted",
		"id", id,
		"name", file.Name,
		"workspace_id", workspaceID,
	)

	return nil
}

// DownloadURL returns a time-limited download URL for a file
func (s *fileService) DownloadURL(ctx context.Context, id, workspaceID string) (string, error) {
	file, err := s.fileRepo.GetByID(ctx, id, workspaceID)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.PresignDownload(ctx, file.StorageKey, file.Name, downloadURLTTL)
	if err != nil {
		return "", &domain.StorageError{Op: "presign", Key: file.StorageKey, Err: err}
	}

	return url, nil
}

// siblingFileCheck builds an ExistsFunc over the case-insensitive names
// of the files in a folder, ignoring excludeID
func (s *fileService) siblingFileCheck(ctx context.Context, folderID *string, workspaceID, excludeID string) (ExistsFunc, error) {
	siblings, err := s.fileRepo.ListByFolder(ctx, folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list sibling files: %w", err)
	}

	taken := make(map[string]struct{}, len(siblings))
	for _, sib := range siblings {
		if sib.ID != excludeID {
			taken[strings.ToLower(sib.Name)] = struct{}{}
		}
	}

	return func(_ context.Context, name string) (bool, error) {
		_, ok := taken[strings.ToLower(name)]
		return ok, nil
	}, nil
}

// computePath fills the display path, falling back to the bare name
func (s *fileService) computePath(ctx context.Context, file *models.File) {
	path, err := s.fileRepo.GetPath(ctx, file)
	if err != nil {
		s.logger.Warn("failed to compute path", "file_id", file.ID, "error", err)
		file.Path = file.Name
		return
	}
	file.Path = path
}

// storageKeyFor builds the blob key for a file at a given location. The
// name segment is escaped so non-ASCII display names round-trip through
// stores with restricted key alphabets; the display name itself is never
// encoded.
func storageKeyFor(workspaceID string, folderID *string, name string) string {
	location := "root"
	if folderID != nil {
		location = *folderID
	}
	return workspaceID + "/" + location + "/" + url.PathEscape(name)
}

// validateUploadRequest validates a file upload request
func (s *fileService) validateUploadRequest(req *services.UploadFileRequest) error {
	if req.Content == nil {
		return fmt.Errorf("content is required")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFileNameLength),
			validation.Match(nameNoSlashes).Error("file name cannot contain slashes"),
		),
		validation.Field(&req.Size, validation.Min(0)),
	)
}

// validateUpdateRequest validates a file update request
func (s *fileService) validateUpdateRequest(req *services.UpdateFileRequest) error {
	if req.Name == nil && !req.FolderID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.WorkspaceID, validation.Required),
	}

	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.Length(1, config.MaxFileNameLength),
				validation.Match(nameNoSlashes).Error("file name cannot contain slashes"),
			),
		)
	}

	return validation.ValidateStruct(req, rules...)
}
