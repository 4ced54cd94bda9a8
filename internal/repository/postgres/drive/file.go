package drive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
	driveRepo "cubby/internal/domain/repositories/drive"
	"cubby/internal/repository/postgres"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) driveRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, folder_id, name, size, content_type, storage_key, uploader_name, uploader_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.ID,
		file.WorkspaceID,
		file.FolderID,
		file.Name,
		file.Size,
		file.ContentType,
		file.StorageKey,
		file.UploaderName,
		file.UploaderEmail,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existingID, queryErr := r.getExistingFileID(ctx, file.WorkspaceID, file.FolderID, file.Name)
			if queryErr != nil {
				return fmt.Errorf("file '%s' already exists in this location: %w", file.Name, domain.ErrConflict)
			}

			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
				ResourceType: "file",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID within a workspace
func (r *PostgresFileRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, folder_id, name, size, content_type, storage_key, uploader_name, uploader_email, created_at, updated_at
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, r.tables.Files)

	var file models.File
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, workspaceID).Scan(
		&file.ID,
		&file.WorkspaceID,
		&file.FolderID,
		&file.Name,
		&file.Size,
		&file.ContentType,
		&file.StorageKey,
		&file.UploaderName,
		&file.UploaderEmail,
		&file.CreatedAt,
		&file.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

// Update updates a file record (name, folder)
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, name = $2, updated_at = $3
		WHERE id = $4 AND workspace_id = $5
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		file.FolderID,
		file.Name,
		file.UpdatedAt,
		file.ID,
		file.WorkspaceID,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existingID, queryErr := r.getExistingFileID(ctx, file.WorkspaceID, file.FolderID, file.Name)
			if queryErr != nil {
				return fmt.Errorf("file '%s' already exists in this location: %w", file.Name, domain.ErrConflict)
			}

			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
				ResourceType: "file",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, id, workspaceID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder lists files in a folder (folderID nil = root level)
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID *string, workspaceID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, folder_id, name, size, content_type, storage_key, uploader_name, uploader_email, created_at, updated_at
		FROM %s
		WHERE folder_id IS NOT DISTINCT FROM $1 AND workspace_id = $2
		ORDER BY LOWER(name) ASC
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// GetAllByWorkspace retrieves all file records in a workspace (flat list)
func (r *PostgresFileRepository) GetAllByWorkspace(ctx context.Context, workspaceID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, folder_id, name, size, content_type, storage_key, uploader_name, uploader_email, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("get all files: %w", err)
	}
	defer rows.Close()

	files, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// GetPath computes the display path for a file
func (r *PostgresFileRepository) GetPath(ctx context.Context, file *models.File) (string, error) {
	if file.FolderID == nil {
		// Root level file
		return file.Name, nil
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

	var folderPath string
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, *file.FolderID, file.WorkspaceID).Scan(&folderPath)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			// Containing folder missing, fall back to bare name
			return file.Name, nil
		}
		return "", fmt.Errorf("get folder path: %w", err)
	}

	return folderPath + "/" + file.Name, nil
}

// scanFiles drains a file rows result set
func scanFiles(rows pgx.Rows) ([]models.File, error) {
	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.WorkspaceID,
			&file.FolderID,
			&file.Name,
			&file.Size,
			&file.ContentType,
			&file.StorageKey,
			&file.UploaderName,
			&file.UploaderEmail,
			&file.CreatedAt,
			&file.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	if files == nil {
		files = []models.File{}
	}

	return files, nil
}

// getExistingFileID finds the sibling that caused a unique violation
func (r *PostgresFileRepository) getExistingFileID(ctx context.Context, workspaceID string, folderID *string, name string) (string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE workspace_id = $1 AND folder_id IS NOT DISTINCT FROM $2 AND LOWER(name) = LOWER($3)
	`, r.tables.Files)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, workspaceID, folderID, name).Scan(&id); err != nil {
		return "", err
	}

	return id, nil
}
