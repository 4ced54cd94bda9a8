package drive

import "testing"

func TestSelectionToggle(t *testing.T) {
	sel := NewSelectionSet()

	sel.ToggleFile("f1")
	if !sel.IsFileSelected("f1") {
		t.Error("expected f1 selected")
	}
	if !sel.IsSelectMode() {
		t.Error("selecting anything enters select mode")
	}

	sel.ToggleFile("f1")
	if sel.IsFileSelected("f1") {
		t.Error("second toggle deselects")
	}
	if sel.IsSelectMode() {
		t.Error("empty implicit selection leaves select mode")
	}
}

func TestSelectionExplicitMode(t *testing.T) {
	sel := NewSelectionSet()

	sel.EnableSelectMode()
	if !sel.IsSelectMode() {
		t.Error("explicit mode holds with zero items")
	}

	sel.Clear()
	if sel.IsSelectMode() {
		t.Error("clear leaves select mode")
	}
}

func TestSelectionSelectAll(t *testing.T) {
	sel := NewSelectionSet()

	sel.SelectAllFiles([]string{"f1", "f2"})
	sel.SelectAllFolders([]string{"d1"})

	if sel.Count() != 3 {
		t.Errorf("expected 3 selected, got %d", sel.Count())
	}
	if len(sel.FileIDs()) != 2 || len(sel.FolderIDs()) != 1 {
		t.Error("id accessors must match the selection")
	}
}

func TestSelectionResetsOnNavigation(t *testing.T) {
	sel := NewSelectionSet()
	sel.SetCurrentFolder(nil) // viewing root
	sel.ToggleFile("f1")
	sel.ToggleFolder("d1")

	// Revisiting the same folder keeps the selection
	sel.SetCurrentFolder(nil)
	if sel.Count() != 2 {
		t.Fatalf("expected selection kept in place, got %d", sel.Count())
	}

	// Navigating elsewhere drops it
	sel.SetCurrentFolder(ptr("d2"))
	if sel.Count() != 0 {
		t.Errorf("expected selection reset on navigation, got %d", sel.Count())
	}
	if sel.IsSelectMode() {
		t.Error("navigation leaves select mode")
	}
}

func TestDragStartOnSelectedItemCarriesSelection(t *testing.T) {
	sel := NewSelectionSet()
	sel.ToggleFile("f1")
	sel.ToggleFile("f2")
	sel.ToggleFolder("d1")

	drag := NewDragSession()
	payload := drag.Start("f1", ItemTypeFile, sel, "")

	if payload.FileCount() != 2 || payload.FolderCount() != 1 {
		t.Errorf("drag of a selected item carries the whole selection, got %d files / %d folders",
			payload.FileCount(), payload.FolderCount())
	}
	if !drag.Active() {
		t.Error("session should be active after start")
	}
}

func TestDragStartOnUnselectedItemCarriesItemAlone(t *testing.T) {
	sel := NewSelectionSet()
	sel.ToggleFile("f1")
	sel.ToggleFile("f2")

	drag := NewDragSession()
	payload := drag.Start("f3", ItemTypeFile, sel, "")

	if payload.FileCount() != 1 || payload.FileIDs[0] != "f3" {
		t.Errorf("drag of an unselected item carries only itself, got %+v", payload)
	}
	if payload.FolderCount() != 0 {
		t.Error("no folders expected in the payload")
	}
}

func TestDragAcceptsDrop(t *testing.T) {
	sel := NewSelectionSet()
	sel.ToggleFolder("d1")
	sel.ToggleFolder("d2")

	drag := NewDragSession()
	drag.Start("d1", ItemTypeFolder, sel, "")

	tests := []struct {
		name       string
		targetType ItemType
		targetID   string
		expected   bool
	}{
		{"unrelated folder", ItemTypeFolder, "d9", true},
		{"root sentinel", ItemTypeFolder, "", true},
		{"file target", ItemTypeFile, "f1", false},
		{"folder in payload", ItemTypeFolder, "d1", false},
		{"other carried folder", ItemTypeFolder, "d2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := drag.AcceptsDrop(tt.targetType, tt.targetID); got != tt.expected {
				t.Errorf("AcceptsDrop(%s, %q) = %v, expected %v", tt.targetType, tt.targetID, got, tt.expected)
			}
		})
	}
}

func TestDragEndResets(t *testing.T) {
	sel := NewSelectionSet()
	drag := NewDragSession()
	drag.Start("f1", ItemTypeFile, sel, "")

	drag.End()
	if drag.Active() {
		t.Error("ended session must be idle")
	}
	if drag.AcceptsDrop(ItemTypeFolder, "d1") {
		t.Error("idle session accepts nothing")
	}
}

func TestDragCrossWorkspacePayload(t *testing.T) {
	sel := NewSelectionSet()
	drag := NewDragSession()

	payload := drag.Start("f1", ItemTypeFile, sel, "ws-other")
	if payload.SourceWorkspaceID != "ws-other" {
		t.Errorf("payload must carry the source workspace, got %q", payload.SourceWorkspaceID)
	}
}
