package drive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
	driveRepo "cubby/internal/domain/repositories/drive"
	"cubby/internal/repository/postgres"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) driveRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, parent_id, name, link_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ID,
		folder.WorkspaceID,
		folder.ParentID,
		folder.Name,
		folder.LinkID,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			// Query for the existing sibling to get its ID
			existingID, queryErr := r.getExistingFolderID(ctx, folder.WorkspaceID, folder.ParentID, folder.Name)
			if queryErr != nil {
				return fmt.Errorf("folder '%s' already exists in this location: %w", folder.Name, domain.ErrConflict)
			}

			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID within a workspace
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, parent_id, name, link_id, created_at, updated_at
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, workspaceID).Scan(
		&folder.ID,
		&folder.WorkspaceID,
		&folder.ParentID,
		&folder.Name,
		&folder.LinkID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update updates a folder (name, parent, link binding)
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, link_id = $3, updated_at = $4
		WHERE id = $5 AND workspace_id = $6
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.LinkID,
		folder.UpdatedAt,
		folder.ID,
		folder.WorkspaceID,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existingID, queryErr := r.getExistingFolderID(ctx, folder.WorkspaceID, folder.ParentID, folder.Name)
			if queryErr != nil {
				return fmt.Errorf("folder '%s' already exists in this location: %w", folder.Name, domain.ErrConflict)
			}

			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a single folder record
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, workspaceID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders (parentID nil = root level)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, parent_id, name, link_id, created_at, updated_at
		FROM %s
		WHERE parent_id IS NOT DISTINCT FROM $1 AND workspace_id = $2
		ORDER BY LOWER(name) ASC
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, parentID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.WorkspaceID,
			&folder.ParentID,
			&folder.Name,
			&folder.LinkID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}

// GetByLinkID retrieves the folder bound to a link, if any
func (r *PostgresFolderRepository) GetByLinkID(ctx context.Context, linkID, workspaceID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, parent_id, name, link_id, created_at, updated_at
		FROM %s
		WHERE link_id = $1 AND workspace_id = $2
	`, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, linkID, workspaceID).Scan(
		&folder.ID,
		&folder.WorkspaceID,
		&folder.ParentID,
		&folder.Name,
		&folder.LinkID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("no folder bound to link %s: %w", linkID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by link: %w", err)
	}

	return &folder, nil
}

// GetPath computes the path for a folder using recursive CTE
func (r *PostgresFolderRepository) GetPath(ctx context.Context, folderID *string, workspaceID string) (string, error) {
	if folderID == nil {
		return "", nil
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE folder_path AS (
			SELECT id, name, parent_id, name::text AS path
			FROM %s
			WHERE id = $1 AND workspace_id = $2
			UNION ALL
			SELECT f.id, f.name, f.parent_id, f.name || '/' || fp.path
			FROM %s f
			JOIN folder_path fp ON f.id = fp.parent_id
		)
		SELECT path FROM folder_path WHERE parent_id IS NULL
	`, r.tables.Folders, r.tables.Folders)

	var path string
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, *folderID, workspaceID).Scan(&path)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", fmt.Errorf("folder %s: %w", *folderID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get folder path: %w", err)
	}

	return path, nil
}

// GetAllByWorkspace retrieves all folders in a workspace (flat list)
func (r *PostgresFolderRepository) GetAllByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, parent_id, name, link_id, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.WorkspaceID,
			&folder.ParentID,
			&folder.Name,
			&folder.LinkID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}

// ListDescendants runs one recursive query returning every folder and file
// under folderID with paths relative to it. The archive builder depends on
// this being a single round trip rather than per-level queries.
func (r *PostgresFolderRepository) ListDescendants(ctx context.Context, folderID, workspaceID string) (*models.DescendantSet, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE sub AS (
			SELECT id, name, parent_id, link_id, name::text AS rel_path
			FROM %s
			WHERE parent_id = $1 AND workspace_id = $2
			UNION ALL
			SELECT f.id, f.name, f.parent_id, f.link_id, s.rel_path || '/' || f.name
			FROM %s f
			JOIN sub s ON f.parent_id = s.id
		)
		SELECT 'folder' AS kind, id, name, parent_id, link_id, rel_path, ''::text AS storage_key, 0::bigint AS size, ''::text AS content_type
		FROM sub
		UNION ALL
		SELECT 'file', fl.id, fl.name, fl.folder_id, NULL,
			CASE WHEN fl.folder_id = $1 THEN fl.name ELSE s.rel_path || '/' || fl.name END,
			fl.storage_key, fl.size, fl.content_type
		FROM %s fl
		LEFT JOIN sub s ON fl.folder_id = s.id
		WHERE fl.workspace_id = $2 AND (fl.folder_id = $1 OR s.id IS NOT NULL)
		ORDER BY rel_path ASC
	`, r.tables.Folders, r.tables.Folders, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list descendants: %w", err)
	}
	defer rows.Close()

	set := &models.DescendantSet{
		Folders: []models.DescendantFolder{},
		Files:   []models.DescendantFile{},
	}

	for rows.Next() {
		var (
			kind        string
			id          string
			name        string
			parentID    *string
			linkID      *string
			relPath     string
			storageKey  string
			size        int64
			contentType string
		)
		if err := rows.Scan(&kind, &id, &name, &parentID, &linkID, &relPath, &storageKey, &size, &contentType); err != nil {
			return nil, fmt.Errorf("scan descendant: %w", err)
		}

		switch kind {
		case "folder":
			folder := models.DescendantFolder{
				ID:      id,
				Name:    name,
				LinkID:  linkID,
				RelPath: relPath,
			}
			if parentID != nil {
				folder.ParentID = *parentID
			}
			set.Folders = append(set.Folders, folder)
		case "file":
			file := models.DescendantFile{
				ID:          id,
				Name:        name,
				RelPath:     relPath,
				StorageKey:  storageKey,
				Size:        size,
				ContentType: contentType,
			}
			if parentID != nil {
				file.FolderID = *parentID
			}
			set.Files = append(set.Files, file)
		default:
			return nil, fmt.Errorf("list descendants: unexpected row kind %q", kind)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate descendants: %w", err)
	}

	return set, nil
}

// getExistingFolderID finds the sibling that caused a unique violation
func (r *PostgresFolderRepository) getExistingFolderID(ctx context.Context, workspaceID string, parentID *string, name string) (string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE workspace_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND LOWER(name) = LOWER($3)
	`, r.tables.Folders)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, workspaceID, parentID, name).Scan(&id); err != nil {
		return "", err
	}

	return id, nil
}
