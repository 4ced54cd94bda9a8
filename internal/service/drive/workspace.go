package drive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
	driveRepo "cubby/internal/domain/repositories/drive"
	services "cubby/internal/domain/services/drive"
)

type workspaceService struct {
	workspaceRepo driveRepo.WorkspaceRepository
	logger        *slog.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo driveRepo.WorkspaceRepository,
	logger *slog.Logger,
) services.WorkspaceService {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		logger:        logger,
	}
}

// Resolve returns the caller's workspace, provisioning one on first
// contact. Workspaces live for as long as the user does.
func (s *workspaceService) Resolve(ctx context.Context, ownerID string) (*models.Workspace, error) {
	ws, err := s.workspaceRepo.GetByOwner(ctx, ownerID)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	ws = &models.Workspace{
		OwnerID:   ownerID,
		Name:      "My Drive",
		CreatedAt: time.Now(),
	}
	if err := s.workspaceRepo.Create(ctx, ws); err != nil {
		// Concurrent first contact: the other request won the race
		if errors.Is(err, domain.ErrConflict) {
			return s.workspaceRepo.GetByOwner(ctx, ownerID)
		}
		return nil, err
	}

	s.logger.Info("workspace provisioned", "id", ws.ID, "owner_id", ownerID)
	return ws, nil
}
