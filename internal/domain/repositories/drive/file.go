package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// FileRepository defines data access operations for file metadata records
type FileRepository interface {
	// Create creates a new file record
	Create(ctx context.Context, file *drive.File) error

	// GetByID retrieves a file by ID within a workspace
	GetByID(ctx context.Context, id, workspaceID string) (*drive.File, error)

	// Update updates a file record (name, folder)
	Update(ctx context.Context, file *drive.File) error

	// Delete removes a file record
	Delete(ctx context.Context, id, workspaceID string) error

	// ListByFolder lists files in a folder (folderID nil = root level)
	ListByFolder(ctx context.Context, folderID *string, workspaceID string) ([]drive.File, error)

	// GetAllByWorkspace retrieves all file records in a workspace (flat list)
	GetAllByWorkspace(ctx context.Context, workspaceID string) ([]drive.File, error)

	// GetPath computes the display path for a file ("a/b/report.pdf")
	GetPath(ctx context.Context, file *drive.File) (string, error)
}
