// Package drive implements the hierarchical organization and
// bulk-mutation engine: naming resolution, tree validation, single-item
// and bulk move/delete, archive building and folder-link binding.
package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
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

var nameNoSlashes = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folderRepo driveRepo.FolderRepository
	fileRepo   driveRepo.FileRepository
	linkRepo   driveRepo.LinkRepository
	blobs      storage.BlobStore
	txManager  repositories.TransactionManager
	guard      *treeGuard
	limits     config.Limits
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	linkRepo driveRepo.LinkRepository,
	blobs storage.BlobStore,
	txManager repositories.TransactionManager,
	limits config.Limits,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		linkRepo:   linkRepo,
		blobs:      blobs,
		txManager:  txManager,
		guard:      newTreeGuard(folderRepo, limits.MaxFolderDepth),
		limits:     limits,
		logger:     logger,
	}
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize the root sentinel to nil
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID, req.WorkspaceID); err != nil {
			return nil, fmt.Errorf("parent folder not found: %w", err)
		}
		if err := s.guard.checkDepthBudget(ctx, req.ParentID, req.WorkspaceID); err != nil {
			return nil, err
		}
	}

	folder := &models.Folder{
		WorkspaceID: req.WorkspaceID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.computePath(ctx, folder)

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"workspace_id", req.WorkspaceID,
		"parent_id", req.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder with its computed path
func (s *folderService) GetFolder(ctx context.Context, id, workspaceID string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id, workspaceID)
	if err != nil {
		return nil, err
	}

	s.computePath(ctx, folder)
	return folder, nil
}

// UpdateFolder renames and/or moves a folder
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, id, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	// Normalize the root sentinel to nil
	if req.ParentID.Present && req.ParentID.Value != nil && *req.ParentID.Value == "" {
		req.ParentID.Value = nil
	}

	rename := req.Name != nil && *req.Name != folder.Name
	move := req.ParentID.Present && !sameParent(folder.ParentID, req.ParentID.Value)

	// Idempotent: already named and placed as requested
	if !rename && !move {
		s.computePath(ctx, folder)
		return folder, nil
	}

	if move {
		if req.ParentID.Value != nil {
			if _, err := s.folderRepo.GetByID(ctx, *req.ParentID.Value, req.WorkspaceID); err != nil {
				return nil, fmt.Errorf("target folder not found: %w", err)
			}
		}
		if err := s.guard.checkMoveTarget(ctx, id, req.ParentID.Value, req.WorkspaceID); err != nil {
			return nil, err
		}
		folder.ParentID = req.ParentID.Value
	}

	if rename {
		folder.Name = *req.Name
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if move {
			// Re-probe against the destination sibling set at write time.
			// An explicit rename is not auto-suffixed: a collision there is
			// the user's to resolve, surfaced as a conflict by the update.
			name, err := s.resolveFolderName(txCtx, folder.Name, folder.ParentID, req.WorkspaceID, folder.ID)
			if err != nil {
				return err
			}
			folder.Name = name
		}

		folder.UpdatedAt = time.Now()
		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.computePath(ctx, folder)

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"moved", move,
		"renamed", rename,
	)

	return folder, nil
}

// MoveFolder reparents a folder (nil = root)
func (s *folderService) MoveFolder(ctx context.Context, id string, newParentID *string, workspaceID string) (*models.Folder, error) {
	return s.UpdateFolder(ctx, id, &services.UpdateFolderRequest{
		WorkspaceID: workspaceID,
		ParentID:    services.OptionalParent{Present: true, Value: newParentID},
	})
}

// DeleteFolder deletes a folder and everything underneath it. Descendant
// file blobs go first; no record is touched until every blob is gone, so
// a storage failure leaves the tree intact and inspectable. Records are
// then removed in one transaction, bottom-up, deactivating any share
// links bound to the deleted folders.
func (s *folderService) DeleteFolder(ctx context.Context, id, workspaceID string) error {
	folder, err := s.folderRepo.GetByID(ctx, id, workspaceID)
	if err != nil {
		return err
	}

	set, err := s.folderRepo.ListDescendants(ctx, id, workspaceID)
	if err != nil {
		return fmt.Errorf("list descendants: %w", err)
	}

	// Storage first
	for _, file := range set.Files {
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			if errors.Is(err, storage.ErrBlobNotFound) {
				continue
			}
			return &domain.StorageError{Op: "delete", Key: file.StorageKey, Err: err}
		}
	}

	// Collect links bound to the folder itself or any descendant
	linkIDs := make([]string, 0, 1)
	if folder.LinkID != nil {
		linkIDs = append(linkIDs, *folder.LinkID)
	}
	for _, desc := range set.Folders {
		if desc.LinkID != nil {
			linkIDs = append(linkIDs, *desc.LinkID)
		}
	}

	// Deepest records first so parent rows never dangle mid-transaction
	folders := make([]models.DescendantFolder, len(set.Folders))
	copy(folders, set.Folders)
	sort.Slice(folders, func(i, j int) bool {
		return strings.Count(folders[i].RelPath, "/") > strings.Count(folders[j].RelPath, "/")
	})

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, linkID := range linkIDs {
			link, err := s.linkRepo.GetByID(txCtx, linkID, workspaceID)
			if err != nil {
				return fmt.Errorf("load bound link: %w", err)
			}
			link.Active = false
			link.UpdatedAt = time.Now()
			if err := s.linkRepo.Update(txCtx, link); err != nil {
				return fmt.Errorf("deactivate link: %w", err)
			}
		}

		for _, file := range set.Files {
			if err := s.fileRepo.Delete(txCtx, file.ID, workspaceID); err != nil {
				return fmt.Errorf("delete file record: %w", err)
			}
		}

		for _, desc := range folders {
			if err := s.folderRepo.Delete(txCtx, desc.ID, workspaceID); err != nil {
				return fmt.Errorf("delete folder record: %w", err)
			}
		}

		return s.folderRepo.Delete(txCtx, id, workspaceID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", id,
		"name", folder.Name,
		"workspace_id", workspaceID,
		"descendant_folders", len(set.Folders),
		"descendant_files", len(set.Files),
		"links_deactivated", len(linkIDs),
	)

	return nil
}

// ListChildren lists child folders and files of a folder (nil = root)
func (s *folderService) ListChildren(ctx context.Context, folderID *string, workspaceID string) (*services.FolderContents, error) {
	var folder *models.Folder
	var err error

	if folderID != nil && *folderID != "" {
		folder, err = s.folderRepo.GetByID(ctx, *folderID, workspaceID)
		if err != nil {
			return nil, err
		}
		s.computePath(ctx, folder)
	} else {
		folderID = nil
	}

	childFolders, err := s.folderRepo.ListChildren(ctx, folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}

	files, err := s.fileRepo.ListByFolder(ctx, folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return &services.FolderContents{
		Folder:  folder,
		Folders: childFolders,
		Files:   files,
	}, nil
}

// resolveFolderName probes the destination sibling set for a free name,
// ignoring the moving folder itself
func (s *folderService) resolveFolderName(ctx context.Context, desired string, parentID *string, workspaceID, excludeID string) (string, error) {
	return resolveSiblingFolderName(ctx, s.folderRepo, desired, parentID, workspaceID, excludeID, s.limits.NameProbeBudget)
}

// resolveSiblingFolderName probes the case-insensitive names of the
// folders under parentID for a free variant of desired
func resolveSiblingFolderName(ctx context.Context, folderRepo driveRepo.FolderRepository, desired string, parentID *string, workspaceID, excludeID string, budget int) (string, error) {
	siblings, err := folderRepo.ListChildren(ctx, parentID, workspaceID)
	if err != nil {
		return "", fmt.Errorf("list destination siblings: %w", err)
	}

	taken := make(map[string]struct{}, len(siblings))
	for _, sib := range siblings {
		if sib.ID != excludeID {
			taken[strings.ToLower(sib.Name)] = struct{}{}
		}
	}

	return ResolveName(ctx, desired, budget, func(_ context.Context, name string) (bool, error) {
		_, ok := taken[strings.ToLower(name)]
		return ok, nil
	})
}

// computePath fills the display path, falling back to the bare name
func (s *folderService) computePath(ctx context.Context, folder *models.Folder) {
	path, err := s.folderRepo.GetPath(ctx, &folder.ID, folder.WorkspaceID)
	if err != nil {
		s.logger.Warn("failed to compute path", "folder_id", folder.ID, "error", err)
		folder.Path = folder.Name
		return
	}
	folder.Path = path
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(nameNoSlashes).Error("folder name cannot contain slashes"),
		),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *services.UpdateFolderRequest) error {
	if req.Name == nil && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.WorkspaceID, validation.Required),
	}

	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.Length(1, config.MaxFolderNameLength),
				validation.Match(nameNoSlashes).Error("folder name cannot contain slashes"),
			),
		)
	}

	return validation.ValidateStruct(req, rules...)
}

// sameParent compares two nullable parent references
func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
