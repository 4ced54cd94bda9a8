package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// TreeService defines operations for building the workspace tree
type TreeService interface {
	// GetWorkspaceTree builds and returns the nested folder/file tree
	GetWorkspaceTree(ctx context.Context, workspaceID string) (*drive.TreeNode, error)
}
