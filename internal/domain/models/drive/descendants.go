package drive

// DescendantSet is the flat result of one recursive descendant query for a
// folder: every folder and file underneath it, each carrying its path
// relative to the queried folder. The archive builder consumes this in a
// single pass instead of issuing per-level queries.
type DescendantSet struct {
	Folders []DescendantFolder
	Files   []DescendantFile
}

// DescendantFolder is a folder below the queried root
type DescendantFolder struct {
	ID       string
	Name     string
	ParentID string  // parent folder id (the queried root for first-level entries)
	LinkID   *string // bound share link, if any
	RelPath  string  // "sub" or "sub/nested", relative to the queried folder
}

// DescendantFile is a file below the queried root
type DescendantFile struct {
	ID          string
	Name        string
	FolderID    string // containing folder id (the queried root at minimum)
	RelPath     string // "report.pdf" or "sub/report.pdf"
	StorageKey  string
	Size        int64
	ContentType string
}
