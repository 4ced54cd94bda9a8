package drive

// Ephemeral per-client selection and drag state. Nothing here touches
// persistence; the state is synchronous and single-client (one active
// drag at a time), so no locking is needed.

// ItemType distinguishes the two draggable entity kinds
type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
)

// SelectionSet tracks which files and folders a client has selected in
// the folder it is currently viewing. Selection does not span folders:
// navigating elsewhere resets it.
type SelectionSet struct {
	files    map[string]struct{}
	folders  map[string]struct{}
	explicit bool // selection mode switched on with zero items selected

	currentFolder *string
	hasFolder     bool
}

// NewSelectionSet creates an empty selection
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{
		files:   make(map[string]struct{}),
		folders: make(map[string]struct{}),
	}
}

// ToggleFile flips a file in or out of the selection
func (s *SelectionSet) ToggleFile(id string) {
	toggle(s.files, id)
}

// ToggleFolder flips a folder in or out of the selection
func (s *SelectionSet) ToggleFolder(id string) {
	toggle(s.folders, id)
}

func toggle(set map[string]struct{}, id string) {
	if _, ok := set[id]; ok {
		delete(set, id)
		return
	}
	set[id] = struct{}{}
}

// SelectAllFiles adds every given file to the selection
func (s *SelectionSet) SelectAllFiles(ids []string) {
	for _, id := range ids {
		s.files[id] = struct{}{}
	}
}

// SelectAllFolders adds every given folder to the selection
func (s *SelectionSet) SelectAllFolders(ids []string) {
	for _, id := range ids {
		s.folders[id] = struct{}{}
	}
}

// Clear empties both sets and leaves selection mode
func (s *SelectionSet) Clear() {
	s.files = make(map[string]struct{})
	s.folders = make(map[string]struct{})
	s.explicit = false
}

// IsFileSelected reports whether a file is in the selection
func (s *SelectionSet) IsFileSelected(id string) bool {
	_, ok := s.files[id]
	return ok
}

// IsFolderSelected reports whether a folder is in the selection
func (s *SelectionSet) IsFolderSelected(id string) bool {
	_, ok := s.folders[id]
	return ok
}

// EnableSelectMode turns selection mode on even with nothing selected,
// keeping checkboxes visible in the UI
func (s *SelectionSet) EnableSelectMode() {
	s.explicit = true
}

// IsSelectMode is true whenever anything is selected or the mode was
// explicitly enabled
func (s *SelectionSet) IsSelectMode() bool {
	return s.explicit || len(s.files) > 0 || len(s.folders) > 0
}

// FileIDs returns the selected file ids
func (s *SelectionSet) FileIDs() []string {
	return keys(s.files)
}

// FolderIDs returns the selected folder ids
func (s *SelectionSet) FolderIDs() []string {
	return keys(s.folders)
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Count returns the total number of selected items
func (s *SelectionSet) Count() int {
	return len(s.files) + len(s.folders)
}

// SetCurrentFolder records the folder the client is viewing (nil = root)
// and resets the selection when it changes
func (s *SelectionSet) SetCurrentFolder(folderID *string) {
	if s.hasFolder && sameParent(s.currentFolder, folderID) {
		return
	}
	s.currentFolder = folderID
	s.hasFolder = true
	s.Clear()
}

// DragPayload is the resolved set of items a drag actually carries
type DragPayload struct {
	FileIDs           []string
	FolderIDs         []string
	SourceWorkspaceID string // non-empty when the drag crosses workspaces
}

// FileCount returns the number of files being dragged
func (p DragPayload) FileCount() int { return len(p.FileIDs) }

// FolderCount returns the number of folders being dragged
func (p DragPayload) FolderCount() int { return len(p.FolderIDs) }

// DragSession tracks the one in-flight drag for a client
type DragSession struct {
	active   bool
	itemID   string
	itemType ItemType
	payload  DragPayload
}

// NewDragSession creates an idle drag session
func NewDragSession() *DragSession {
	return &DragSession{}
}

// Start begins a drag on an item. A drag starting on a selected item
// carries the entire current selection, files and folders together; a
// drag starting on an unselected item carries that item alone.
func (d *DragSession) Start(itemID string, itemType ItemType, sel *SelectionSet, sourceWorkspaceID string) DragPayload {
	payload := DragPayload{SourceWorkspaceID: sourceWorkspaceID}

	selected := (itemType == ItemTypeFile && sel.IsFileSelected(itemID)) ||
		(itemType == ItemTypeFolder && sel.IsFolderSelected(itemID))

	if selected {
		payload.FileIDs = sel.FileIDs()
		payload.FolderIDs = sel.FolderIDs()
	} else if itemType == ItemTypeFile {
		payload.FileIDs = []string{itemID}
	} else {
		payload.FolderIDs = []string{itemID}
	}

	d.active = true
	d.itemID = itemID
	d.itemType = itemType
	d.payload = payload
	return payload
}

// Active reports whether a drag is in flight
func (d *DragSession) Active() bool {
	return d.active
}

// Payload returns the resolved payload of the in-flight drag
func (d *DragSession) Payload() DragPayload {
	return d.payload
}

// End clears the session, whether the drop landed or was abandoned
func (d *DragSession) End() {
	*d = DragSession{}
}

// AcceptsDrop decides whether the in-flight drag may land on a target.
// Folders accept both files and folders; the root sentinel (empty
// targetID with folder type) always accepts; files accept nothing.
// Dropping a folder onto itself or onto anything it is carrying is
// rejected. A false result is a silent ignore, not an error: invalid
// drops are routine pointer outcomes.
func (d *DragSession) AcceptsDrop(targetType ItemType, targetID string) bool {
	if !d.active {
		return false
	}
	if targetType != ItemTypeFolder {
		return false
	}
	if targetID == "" {
		// Root sentinel
		return true
	}
	for _, folderID := range d.payload.FolderIDs {
		if folderID == targetID {
			return false
		}
	}
	return true
}
