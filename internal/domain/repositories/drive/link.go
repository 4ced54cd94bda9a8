package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// LinkRepository defines data access operations for share links
type LinkRepository interface {
	// Create creates a new link
	Create(ctx context.Context, link *drive.Link) error

	// GetByID retrieves a link by ID within a workspace
	GetByID(ctx context.Context, id, workspaceID string) (*drive.Link, error)

	// Update updates a link (active flag, name)
	Update(ctx context.Context, link *drive.Link) error

	// List retrieves all links in a workspace, most recent first
	List(ctx context.Context, workspaceID string) ([]drive.Link, error)

	// SlugExists reports whether a slug is already taken (workspace-global)
	SlugExists(ctx context.Context, slug string) (bool, error)
}
