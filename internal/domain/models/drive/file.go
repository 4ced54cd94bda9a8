package drive

import (
	"time"
)

type File struct {
	ID          string  `json:"id" db:"id"`
	WorkspaceID string  `json:"workspace_id" db:"workspace_id"`
	FolderID    *string `json:"folder_id" db:"folder_id"` // NULL = root level
	Name        string  `json:"name" db:"name"`           // Display name, "report.pdf" not "docs/report.pdf"
	Size        int64   `json:"size" db:"size"`
	ContentType string  `json:"content_type" db:"content_type"`
	StorageKey  string  `json:"-" db:"storage_key"` // Blob store key, not exposed over the API
	// Uploader attribution for files that arrived through a shared link
	// rather than the workspace owner. Empty for owner uploads.
	UploaderName  string    `json:"uploader_name,omitempty" db:"uploader_name"`
	UploaderEmail string    `json:"uploader_email,omitempty" db:"uploader_email"`
	Path          string    `json:"path,omitempty"` // Computed display path, not stored in DB
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
