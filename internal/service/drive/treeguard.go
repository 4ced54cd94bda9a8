package drive

import (
	"context"
	"fmt"

	"cubby/internal/domain"
	repositories "cubby/internal/domain/repositories/drive"
)

// treeGuard answers the ancestry and depth questions that gate folder
// moves. Both checks run before any write; a failing check aborts the
// whole move.
type treeGuard struct {
	folderRepo repositories.FolderRepository
	maxDepth   int
}

func newTreeGuard(folderRepo repositories.FolderRepository, maxDepth int) *treeGuard {
	return &treeGuard{folderRepo: folderRepo, maxDepth: maxDepth}
}

// wouldCreateCycle reports whether reparenting movingID under
// targetParentID would make the folder an ancestor of itself. It walks
// up from the target toward root looking for the moving folder; the walk
// is bounded by maxDepth so pre-existing bad data cannot loop forever.
func (g *treeGuard) wouldCreateCycle(ctx context.Context, movingID, targetParentID, workspaceID string) (bool, error) {
	if movingID == targetParentID {
		return true, nil
	}

	currentID := targetParentID
	for steps := 0; steps <= g.maxDepth; steps++ {
		folder, err := g.folderRepo.GetByID(ctx, currentID, workspaceID)
		if err != nil {
			return false, err
		}
		if folder.ParentID == nil {
			return false, nil
		}
		if *folder.ParentID == movingID {
			return true, nil
		}
		currentID = *folder.ParentID
	}

	return false, fmt.Errorf("parent chain of folder %s exceeds %d steps", targetParentID, g.maxDepth)
}

// depth returns the parent-chain length of a folder; root-level folders
// have depth 1 and a nil id (the root itself) has depth 0.
func (g *treeGuard) depth(ctx context.Context, folderID *string, workspaceID string) (int, error) {
	if folderID == nil {
		return 0, nil
	}

	depth := 0
	currentID := *folderID
	for {
		folder, err := g.folderRepo.GetByID(ctx, currentID, workspaceID)
		if err != nil {
			return 0, err
		}
		depth++
		if depth > g.maxDepth {
			return 0, fmt.Errorf("parent chain of folder %s exceeds %d steps", *folderID, g.maxDepth)
		}
		if folder.ParentID == nil {
			return depth, nil
		}
		currentID = *folder.ParentID
	}
}

// checkMoveTarget rejects a folder move that would create a cycle or push
// the folder past the depth budget. targetParentID nil means root.
func (g *treeGuard) checkMoveTarget(ctx context.Context, movingID string, targetParentID *string, workspaceID string) error {
	if targetParentID == nil {
		return nil
	}

	cycle, err := g.wouldCreateCycle(ctx, movingID, *targetParentID, workspaceID)
	if err != nil {
		return err
	}
	if cycle {
		return &domain.ValidationError{
			Message: "cannot move a folder into itself or one of its descendants",
		}
	}

	return g.checkDepthBudget(ctx, targetParentID, workspaceID)
}

// checkDepthBudget rejects placement under targetParentID when the new
// node would exceed the configured maximum depth
func (g *treeGuard) checkDepthBudget(ctx context.Context, targetParentID *string, workspaceID string) error {
	targetDepth, err := g.depth(ctx, targetParentID, workspaceID)
	if err != nil {
		return err
	}
	if targetDepth+1 > g.maxDepth {
		return &domain.ValidationError{
			Message: fmt.Sprintf("folder nesting cannot exceed %d levels", g.maxDepth),
		}
	}
	return nil
}
