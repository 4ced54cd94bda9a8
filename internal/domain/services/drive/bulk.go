package drive

import (
	"context"
)

// FailureKind classifies a per-item bulk failure so the UI can surface
// partial-success summaries precisely
type FailureKind string

const (
	FailureValidation FailureKind = "validation" // cycle, depth, cross-workspace target
	FailureNotFound   FailureKind = "not_found"
	FailureConflict   FailureKind = "conflict"
	FailureStorage    FailureKind = "storage"
	FailureInternal   FailureKind = "internal"
)

// ItemFailure records one failed item of a bulk operation
type ItemFailure struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"` // "file" or "folder"
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// BulkResult aggregates per-item outcomes of a bulk operation. Each item
// runs in its own transaction; one failure never aborts the rest.
type BulkResult struct {
	FilesSucceeded   int           `json:"files_succeeded"`
	FilesFailed      int           `json:"files_failed"`
	FoldersSucceeded int           `json:"folders_succeeded"`
	FoldersFailed    int           `json:"folders_failed"`
	Failures         []ItemFailure `json:"failures,omitempty"`
}

// Succeeded returns the total count of successful items
func (r *BulkResult) Succeeded() int {
	return r.FilesSucceeded + r.FoldersSucceeded
}

// Failed returns the total count of failed items
func (r *BulkResult) Failed() int {
	return r.FilesFailed + r.FoldersFailed
}

// BulkService orchestrates multi-item move/delete/drop operations
type BulkService interface {
	// BulkMove moves each file and folder into the target folder
	// independently, collecting per-item failures
	BulkMove(ctx context.Context, req *BulkMoveRequest) (*BulkResult, error)

	// BulkDelete deletes each file and folder independently,
	// collecting per-item failures
	BulkDelete(ctx context.Context, req *BulkDeleteRequest) (*BulkResult, error)

	// Drop resolves a drag-and-drop gesture into mutations: same-workspace
	// drops move, cross-workspace drops copy
	Drop(ctx context.Context, req *DropRequest) (*BulkResult, error)
}

// BulkMoveRequest represents a bulk move request
type BulkMoveRequest struct {
	WorkspaceID    string   `json:"-"`
	FileIDs        []string `json:"file_ids"`
	FolderIDs      []string `json:"folder_ids"`
	TargetFolderID *string  `json:"target_folder_id"` // null = root
}

// BulkDeleteRequest represents a bulk delete request
type BulkDeleteRequest struct {
	WorkspaceID string   `json:"-"`
	FileIDs     []string `json:"file_ids"`
	FolderIDs   []string `json:"folder_ids"`
}

// DropRequest carries a resolved drag payload and its drop target
type DropRequest struct {
	WorkspaceID       string   `json:"-"`
	SourceWorkspaceID string   `json:"source_workspace_id,omitempty"` // empty = same workspace
	FileIDs           []string `json:"file_ids"`
	FolderIDs         []string `json:"folder_ids"`
	TargetFolderID    *string  `json:"target_folder_id"` // null = root
}
