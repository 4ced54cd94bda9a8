package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// OptionalParent carries a tri-state parent-folder reference, mirroring
// JSON PATCH semantics (handlers map from httputil.OptionalString):
//   - Present=false: don't move
//   - Present=true, Value=nil: move to root
//   - Present=true, Value=&id: move into the given folder
type OptionalParent struct {
	Present bool
	Value   *string
}

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*drive.Folder, error)

	// GetFolder retrieves a folder with its computed path
	GetFolder(ctx context.Context, id, workspaceID string) (*drive.Folder, error)

	// UpdateFolder renames and/or moves a folder
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*drive.Folder, error)

	// MoveFolder reparents a folder (nil = root). No-op success when the
	// folder is already under the target parent.
	MoveFolder(ctx context.Context, id string, newParentID *string, workspaceID string) (*drive.Folder, error)

	// DeleteFolder deletes a folder and all its contents recursively,
	// deactivating any share links bound to deleted folders
	DeleteFolder(ctx context.Context, id, workspaceID string) error

	// ListChildren lists child folders and files of a folder (nil = root)
	ListChildren(ctx context.Context, folderID *string, workspaceID string) (*FolderContents, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id,omitempty"` // Parent folder ID (null for root)
}

// UpdateFolderRequest represents a folder update request (rename and/or move)
type UpdateFolderRequest struct {
	WorkspaceID string
	Name        *string        // rename
	ParentID    OptionalParent // move (tri-state)
}

// FolderContents represents a folder with its children
type FolderContents struct {
	Folder  *drive.Folder  `json:"folder,omitempty"` // null for root
	Folders []drive.Folder `json:"folders"`
	Files   []drive.File   `json:"files"`
}
