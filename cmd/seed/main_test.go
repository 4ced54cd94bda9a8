package main

import (
	"path"
	"testing"
)

// Folder creation resolves each parent from the folders seeded before it,
// so the list has to arrive parents-first.
func TestSeedFoldersParentsFirst(t *testing.T) {
	seen := map[string]bool{"": true}
	for _, folderPath := range seedFolders() {
		dir := path.Dir(folderPath)
		if dir == "." {
			dir = ""
		}
		if !seen[dir] {
			t.Errorf("folder %q listed before its parent %q", folderPath, dir)
		}
		if seen[folderPath] {
			t.Errorf("folder %q listed twice", folderPath)
		}
		seen[folderPath] = true
	}
}

func TestSeedFilesTargetSeededFolders(t *testing.T) {
	folders := map[string]bool{"": true}
	for _, folderPath := range seedFolders() {
		folders[folderPath] = true
	}

	for _, f := range seedFiles() {
		dir := path.Dir(f.path)
		if dir == "." {
			dir = ""
		}
		if !folders[dir] {
			t.Errorf("file %q targets unseeded folder %q", f.path, dir)
		}
	}
}
