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

// PostgresWorkspaceRepository implements the WorkspaceRepository interface
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *postgres.RepositoryConfig) driveRepo.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create provisions a new workspace
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, r.tables.Workspaces)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		ws.ID,
		ws.OwnerID,
		ws.Name,
		ws.CreatedAt,
	).Scan(&ws.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("workspace for owner %s already exists", ws.OwnerID),
				ResourceType: "workspace",
			}
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID
func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Workspaces)

	var ws models.Workspace
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&ws.ID,
		&ws.OwnerID,
		&ws.Name,
		&ws.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return &ws, nil
}

// GetByOwner retrieves the workspace owned by a user
func (r *PostgresWorkspaceRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, created_at
		FROM %s
		WHERE owner_id = $1
	`, r.tables.Workspaces)

	var ws models.Workspace
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, ownerID).Scan(
		&ws.ID,
		&ws.OwnerID,
		&ws.Name,
		&ws.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace for owner %s: %w", ownerID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace by owner: %w", err)
	}

	return &ws, nil
}
