package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *drive.Folder) error

	// GetByID retrieves a folder by ID within a workspace
	GetByID(ctx context.Context, id, workspaceID string) (*drive.Folder, error)

	// Update updates a folder (name, parent, link binding)
	Update(ctx context.Context, folder *drive.Folder) error

	// Delete deletes a single folder record
	Delete(ctx context.Context, id, workspaceID string) error

	// ListChildren lists immediate child folders (parentID nil = root level)
	ListChildren(ctx context.Context, parentID *string, workspaceID string) ([]drive.Folder, error)

	// GetByLinkID retrieves the folder bound to a link, if any
	GetByLinkID(ctx context.Context, linkID, workspaceID string) (*drive.Folder, error)

	// GetPath computes the display path for a folder ("a/b/c")
	GetPath(ctx context.Context, folderID *string, workspaceID string) (string, error)

	// GetAllByWorkspace retrieves all folders in a workspace (flat list)
	GetAllByWorkspace(ctx context.Context, workspaceID string) ([]drive.Folder, error)

	// ListDescendants runs one recursive query returning every folder and
	// file under folderID, each with its path relative to folderID
	ListDescendants(ctx context.Context, folderID, workspaceID string) (*drive.DescendantSet, error)
}
