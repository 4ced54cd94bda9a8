package drive

import (
	"time"
)

type Folder struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	ParentID    *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name        string    `json:"name" db:"name"`
	LinkID      *string   `json:"link_id,omitempty" db:"link_id"` // NULL = no share link bound
	Path        string    `json:"path,omitempty"`                 // Computed display path, not stored in DB
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsLinked reports whether a share link is bound to this folder.
func (f *Folder) IsLinked() bool {
	return f.LinkID != nil && *f.LinkID != ""
}
