package drive

import (
	"context"

	"cubby/internal/domain/models/drive"
)

// LinkBinder manages the Unbound/Active lifecycle of folder-link bindings
type LinkBinder interface {
	// BindNew creates a link named after the folder (slug collisions
	// resolved by suffix probing) and binds it atomically
	BindNew(ctx context.Context, req *BindNewRequest) (*drive.Link, error)

	// BindExisting binds an unbound link to an unlinked folder atomically
	BindExisting(ctx context.Context, folderID, linkID, workspaceID string) (*drive.Link, error)

	// Unbind detaches the folder's link and deactivates it, preserving
	// the link row for reuse. Idempotent: succeeds as a no-op when the
	// folder has no binding.
	Unbind(ctx context.Context, folderID, workspaceID string) error

	// ListLinks retrieves all links in the workspace
	ListLinks(ctx context.Context, workspaceID string) ([]drive.Link, error)
}

// BindNewRequest represents a bind-new-link request
type BindNewRequest struct {
	WorkspaceID string   `json:"-"`
	FolderID    string   `json:"-"`
	Visibility  string   `json:"visibility,omitempty"` // defaults to public
	Recipients  []string `json:"recipients,omitempty"`
}

// LinkCreator is the external link-creation collaborator. The binder
// derives the name and probes the slug; the collaborator owns the row.
type LinkCreator interface {
	CreateLink(ctx context.Context, params CreateLinkParams) (*drive.Link, error)
}

// CreateLinkParams are the inputs to the link-creation collaborator
type CreateLinkParams struct {
	WorkspaceID string
	Name        string
	Slug        string
	Visibility  string
	Recipients  []string
}
