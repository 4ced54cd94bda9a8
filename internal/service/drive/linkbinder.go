package drive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gosimple/slug"

	"cubby/internal/config"
	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
	"cubby/internal/domain/repositories"
	driveRepo "cubby/internal/domain/repositories/drive"
	services "cubby/internal/domain/services/drive"
)

type linkBinder struct {
	folderRepo driveRepo.FolderRepository
	linkRepo   driveRepo.LinkRepository
	creator    services.LinkCreator
	txManager  repositories.TransactionManager
	limits     config.Limits
	logger     *slog.Logger
}

// NewLinkBinder creates a new folder-link binder
func NewLinkBinder(
	folderRepo driveRepo.FolderRepository,
	linkRepo driveRepo.LinkRepository,
	creator services.LinkCreator,
	txManager repositories.TransactionManager,
	limits config.Limits,
	logger *slog.Logger,
) services.LinkBinder {
	return &linkBinder{
		folderRepo: folderRepo,
		linkRepo:   linkRepo,
		creator:    creator,
		txManager:  txManager,
		limits:     limits,
		logger:     logger,
	}
}

// BindNew creates a link named after the folder and binds it atomically.
// The slug derives from the folder name with a "-link" suffix; taken
// slugs get "-2", "-3", ... appended, the same incrementing strategy the
// naming resolver uses in its own uniqueness domain.
func (b *linkBinder) BindNew(ctx context.Context, req *services.BindNewRequest) (*models.Link, error) {
	folder, err := b.folderRepo.GetByID(ctx, req.FolderID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if folder.IsLinked() {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("folder %q already has a link bound", folder.Name),
			ResourceType: "link",
			ResourceID:   *folder.LinkID,
		}
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.LinkVisibilityPublic
	}
	if visibility != models.LinkVisibilityPublic && visibility != models.LinkVisibilityRestricted {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown link visibility %q", visibility),
		}
	}

	linkSlug, err := b.resolveSlug(ctx, slug.Make(folder.Name)+"-link")
	if err != nil {
		return nil, err
	}

	var link *models.Link
	err = b.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		link, err = b.creator.CreateLink(txCtx, services.CreateLinkParams{
			WorkspaceID: req.WorkspaceID,
			Name:        folder.Name + " Link",
			Slug:        linkSlug,
			Visibility:  visibility,
			Recipients:  req.Recipients,
		})
		if err != nil {
			return fmt.Errorf("create link: %w", err)
		}
		return b.bind(txCtx, folder, link)
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("link bound",
		"link_id", link.ID,
		"slug", link.Slug,
		"folder_id", folder.ID,
		"workspace_id", req.WorkspaceID,
	)

	return link, nil
}

// BindExisting binds an unbound link to an unlinked folder atomically
func (b *linkBinder) BindExisting(ctx context.Context, folderID, linkID, workspaceID string) (*models.Link, error) {
	folder, err := b.folderRepo.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		return nil, err
	}
	if folder.IsLinked() {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("folder %q already has a link bound", folder.Name),
			ResourceType: "link",
			ResourceID:   *folder.LinkID,
		}
	}

	link, err := b.linkRepo.GetByID(ctx, linkID, workspaceID)
	if err != nil {
		return nil, err
	}
	if link.Active {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("link %q is already bound to a folder", link.Slug),
			ResourceType: "link",
			ResourceID:   link.ID,
		}
	}

	err = b.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return b.bind(txCtx, folder, link)
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("link bound",
		"link_id", link.ID,
		"slug", link.Slug,
		"folder_id", folder.ID,
		"workspace_id", workspaceID,
	)

	return link, nil
}

// Unbind detaches the folder's link and deactivates it. The link row is
// preserved so a previously distributed URL can be revived by a later
// bind. No binding is a no-op success.
func (b *linkBinder) Unbind(ctx context.Context, folderID, workspaceID string) error {
	folder, err := b.folderRepo.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		return err
	}
	if !folder.IsLinked() {
		return nil
	}

	linkID := *folder.LinkID
	err = b.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		link, err := b.linkRepo.GetByID(txCtx, linkID, workspaceID)
		if err != nil {
			return err
		}

		link.Active = false
		link.UpdatedAt = time.Now()
		if err := b.linkRepo.Update(txCtx, link); err != nil {
			return fmt.Errorf("deactivate link: %w", err)
		}

		folder.LinkID = nil
		folder.UpdatedAt = time.Now()
		return b.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return err
	}

	b.logger.Info("link unbound",
		"link_id", linkID,
		"folder_id", folderID,
		"workspace_id", workspaceID,
	)

	return nil
}

// ListLinks retrieves all links in the workspace
func (b *linkBinder) ListLinks(ctx context.Context, workspaceID string) ([]models.Link, error) {
	return b.linkRepo.List(ctx, workspaceID)
}

// bind transitions the link to Active and points the folder at it.
// Callers run this inside a transaction.
func (b *linkBinder) bind(ctx context.Context, folder *models.Folder, link *models.Link) error {
	link.Active = true
	link.UpdatedAt = time.Now()
	if err := b.linkRepo.Update(ctx, link); err != nil {
		return fmt.Errorf("activate link: %w", err)
	}

	folder.LinkID = &link.ID
	folder.UpdatedAt = time.Now()
	return b.folderRepo.Update(ctx, folder)
}

// resolveSlug probes base, base-2, base-3, ... within the configured
// budget; exhausting it is a conflict the caller retries with another
// base name
func (b *linkBinder) resolveSlug(ctx context.Context, base string) (string, error) {
	taken, err := b.linkRepo.SlugExists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", base, err)
	}
	if !taken {
		return base, nil
	}

	for n := 2; n <= b.limits.SlugProbeBudget; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := b.linkRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", &domain.ConflictError{
		Message:      fmt.Sprintf("could not find a free slug for %q after %d attempts", base, b.limits.SlugProbeBudget),
		ResourceType: "link",
	}
}
