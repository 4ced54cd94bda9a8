package drive

import (
	"context"
	"io"
)

// ArchiveService packages a folder's full descendant set into a zip stream
type ArchiveService interface {
	// BuildArchive writes a zip of everything under folderID to w. File
	// entries use paths relative to the folder; folders without descendant
	// files get explicit empty-directory entries. Fails fast without
	// emitting a partial archive if the descendant query fails.
	BuildArchive(ctx context.Context, folderID, workspaceID string, w io.Writer) error

	// ArchiveName returns the suggested download filename ("{folder}.zip")
	ArchiveName(ctx context.Context, folderID, workspaceID string) (string, error)
}
