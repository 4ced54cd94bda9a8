package drive

import (
	"context"
	"time"

	models "cubby/internal/domain/models/drive"
	driveRepo "cubby/internal/domain/repositories/drive"
	services "cubby/internal/domain/services/drive"
)

// repoLinkCreator is the default link-creation collaborator: it writes
// the link row straight through the link repository. Deployments with a
// separate sharing service swap in their own LinkCreator.
type repoLinkCreator struct {
	linkRepo driveRepo.LinkRepository
}

// NewRepoLinkCreator creates a repository-backed link creator
func NewRepoLinkCreator(linkRepo driveRepo.LinkRepository) services.LinkCreator {
	return &repoLinkCreator{linkRepo: linkRepo}
}

// CreateLink writes a new link row. Links start Unbound; the binder
// activates them.
func (c *repoLinkCreator) CreateLink(ctx context.Context, params services.CreateLinkParams) (*models.Link, error) {
	link := &models.Link{
		WorkspaceID: params.WorkspaceID,
		Name:        params.Name,
		Slug:        params.Slug,
		Active:      false,
		Visibility:  params.Visibility,
		Recipients:  params.Recipients,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := c.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}
