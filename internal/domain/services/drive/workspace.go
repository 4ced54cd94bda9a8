package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// WorkspaceService resolves the caller's workspace
type WorkspaceService interface {
	// Resolve returns the workspace owned by the user, provisioning one
	// on first contact
	Resolve(ctx context.Context, ownerID string) (*drive.Workspace, error)
}
