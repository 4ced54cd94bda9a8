package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// WorkspaceRepository defines data access operations for workspaces
type WorkspaceRepository interface {
	// Create provisions a new workspace
	Create(ctx context.Context, ws *drive.Workspace) error

	// GetByID retrieves a workspace by ID
	GetByID(ctx context.Context, id string) (*drive.Workspace, error)

	// GetByOwner retrieves the workspace owned by a user
	GetByOwner(ctx context.Context, ownerID string) (*drive.Workspace, error)
}
