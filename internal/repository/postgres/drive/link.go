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

// PostgresLinkRepository implements the LinkRepository interface
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(config *postgres.RepositoryConfig) driveRepo.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new link
func (r *PostgresLinkRepository) Create(ctx context.Context, link *models.Link) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, name, slug, active, visibility, recipients, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		link.ID,
		link.WorkspaceID,
		link.Name,
		link.Slug,
		link.Active,
		link.Visibility,
		link.Recipients,
		link.CreatedAt,
		link.UpdatedAt,
	).Scan(&link.CreatedAt, &link.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("link slug %q is already taken", link.Slug),
				ResourceType: "link",
			}
		}
		return fmt.Errorf("create link: %w", err)
	}

	return nil
}

// GetByID retrieves a link by ID within a workspace
func (r *PostgresLinkRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Link, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, name, slug, active, visibility, recipients, created_at, updated_at
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, r.tables.Links)

	var link models.Link
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, workspaceID).Scan(
		&link.ID,
		&link.WorkspaceID,
		&link.Name,
		&link.Slug,
		&link.Active,
		&link.Visibility,
		&link.Recipients,
		&link.CreatedAt,
		&link.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get link: %w", err)
	}

	return &link, nil
}

// Update updates a link (active flag, name)
func (r *PostgresLinkRepository) Update(ctx context.Context, link *models.Link) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, active = $2, visibility = $3, recipients = $4, updated_at = $5
		WHERE id = $6 AND workspace_id = $7
	`, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		link.Name,
		link.Active,
		link.Visibility,
		link.Recipients,
		link.UpdatedAt,
		link.ID,
		link.WorkspaceID,
	)

	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("link %s: %w", link.ID, domain.ErrNotFound)
	}

	return nil
}

// List retrieves all links in a workspace, most recent first
func (r *PostgresLinkRepository) List(ctx context.Context, workspaceID string) ([]models.Link, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, name, slug, active, visibility, recipients, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var link models.Link
		err := rows.Scan(
			&link.ID,
			&link.WorkspaceID,
			&link.Name,
			&link.Slug,
			&link.Active,
			&link.Visibility,
			&link.Recipients,
			&link.CreatedAt,
			&link.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	if links == nil {
		links = []models.Link{}
	}

	return links, nil
}

// SlugExists reports whether a slug is already taken (workspace-global)
func (r *PostgresLinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)
	`, r.tables.Links)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}

	return exists, nil
}
