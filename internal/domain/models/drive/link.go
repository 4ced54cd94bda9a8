package drive

import (
	"time"
)

// Link is a shareable access object. A link is either Unbound
// (Active=false, no folder references it) or Active (Active=true,
// exactly one folder references it). Unbinding deactivates the link
// instead of deleting it so a previously distributed URL can be revived.
type Link struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Active      bool      `json:"active" db:"active"`
	Visibility  string    `json:"visibility" db:"visibility"` // "public" or "restricted"
	Recipients  []string  `json:"recipients,omitempty" db:"recipients"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Link visibility values
const (
	LinkVisibilityPublic     = "public"
	LinkVisibilityRestricted = "restricted"
)
