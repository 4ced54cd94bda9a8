package drive

import (
	"context"
	"io"

	"cubby/internal/domain/models/drive"
)

// FileService handles file business logic
type FileService interface {
	// UploadFile stores the content through the blob boundary and creates
	// the metadata record, resolving name collisions against both the
	// sibling set and the blob store
	UploadFile(ctx context.Context, req *UploadFileRequest) (*drive.File, error)

	// GetFile retrieves a file with its computed path
	GetFile(ctx context.Context, id, workspaceID string) (*drive.File, error)

	// UpdateFile renames and/or moves a file
	UpdateFile(ctx context.Context, id string, req *UpdateFileRequest) (*drive.File, error)

	// MoveFile relocates a file into another folder (nil = root). No-op
	// success when the file is already there.
	MoveFile(ctx context.Context, id string, newFolderID *string, workspaceID string) (*drive.File, error)

	// CopyFile duplicates a file's blob and record into a target folder,
	// detached from the original (cross-tree drops)
	CopyFile(ctx context.Context, id, sourceWorkspaceID string, req *CopyFileRequest) (*drive.File, error)

	// DeleteFile removes the blob first, then the record. The record is
	// retained when blob deletion fails for a reason other than "not found".
	DeleteFile(ctx context.Context, id, workspaceID string) error

	// DownloadURL returns a time-limited download URL for a file
	DownloadURL(ctx context.Context, id, workspaceID string) (string, error)
}

// UploadFileRequest represents a file upload + registration request
type UploadFileRequest struct {
	WorkspaceID string
	FolderID    *string // destination folder (nil = root)
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
	// Attribution for uploads arriving through a shared link
	UploaderName  string
	UploaderEmail string
}

// UpdateFileRequest represents a file update request (rename and/or move)
type UpdateFileRequest struct {
	WorkspaceID string
	Name        *string        // rename
	FolderID    OptionalParent // move (tri-state)
}

// CopyFileRequest represents a cross-workspace copy destination
type CopyFileRequest struct {
	WorkspaceID string  // destination workspace
	FolderID    *string // destination folder (nil = root)
}
