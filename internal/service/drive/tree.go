package drive

import (
	"context"
	"log/slog"

	models "cubby/internal/domain/models/drive"
	driveRepo "cubby/internal/domain/repositories/drive"
	services "cubby/internal/domain/services/drive"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo driveRepo.FolderRepository
	fileRepo   driveRepo.FileRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// GetWorkspaceTree builds and returns the nested folder/file tree
func (s *treeService) GetWorkspaceTree(ctx context.Context, workspaceID string) (*models.TreeNode, error) {
	allFolders, err := s.folderRepo.GetAllByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	allFiles, err := s.fileRepo.GetAllByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	// Build folder hierarchy using 3-pass algorithm
	folderMap := make(map[string]*models.FolderTreeNode)
	var rootFolderIDs []string

	// First pass: create all folder nodes
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			LinkID:    folder.LinkID,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			rootFolderIDs = append(rootFolderIDs, folder.ID)
		} else {
			if parent, exists := folderMap[*folder.ParentID]; exists {
				parent.Folders = append(parent.Folders, node)
			}
		}
	}

	// Third pass: add files to their folders
	rootFiles := make([]models.FileTreeNode, 0)
	for _, file := range allFiles {
		fileNode := models.FileTreeNode{
			ID:          file.ID,
			Name:        file.Name,
			FolderID:    file.FolderID,
			Size:        file.Size,
			ContentType: file.ContentType,
			UpdatedAt:   file.UpdatedAt,
		}

		if file.FolderID == nil {
			rootFiles = append(rootFiles, fileNode)
		} else {
			if parent, exists := folderMap[*file.FolderID]; exists {
				parent.Files = append(parent.Files, fileNode)
			}
		}
	}

	rootFolders := make([]*models.FolderTreeNode, 0)
	for _, folderID := range rootFolderIDs {
		if node, exists := folderMap[folderID]; exists {
			rootFolders = append(rootFolders, node)
		}
	}

	tree := &models.TreeNode{
		Folders: rootFolders,
		Files:   rootFiles,
	}

	s.logger.Info("workspace tree built",
		"workspace_id", workspaceID,
		"folder_count", len(allFolders),
		"file_count", len(allFiles),
	)

	return tree, nil
}
