package drive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cubby/internal/domain"
	services "cubby/internal/domain/services/drive"
	"cubby/internal/storage/memory"
)

func TestCreateFolder(t *testing.T) {
	env := newTestEnv(nil)

	folder, err := env.folderSvc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		WorkspaceID: testWS,
		Name:        "Documents",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folder.ID == "" {
		t.Error("expected generated id")
	}
	if folder.ParentID != nil {
		t.Error("expected root-level folder")
	}
	if folder.Path != "Documents" {
		t.Errorf("expected path %q, got %q", "Documents", folder.Path)
	}
}

func TestCreateFolderSiblingConflict(t *testing.T) {
	env := newTestEnv(nil)
	existing := env.mustCreateFolder(t, testWS, "Documents", nil)

	_, err := env.folderSvc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		WorkspaceID: testWS,
		Name:        "documents", // case-insensitive collision
	})
	if err == nil {
		t.Fatal("expected conflict")
	}

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ResourceID != existing.ID {
		t.Errorf("expected conflict to carry existing id %s, got %s", existing.ID, conflict.ResourceID)
	}
}

func TestCreateFolderValidation(t *testing.T) {
	env := newTestEnv(nil)

	tests := []struct {
		name string
		req  *services.CreateFolderRequest
	}{
		{"empty name", &services.CreateFolderRequest{WorkspaceID: testWS, Name: ""}},
		{"slash in name", &services.CreateFolderRequest{WorkspaceID: testWS, Name: "a/b"}},
		{"missing workspace", &services.CreateFolderRequest{Name: "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.folderSvc.CreateFolder(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateFolderMissingParent(t *testing.T) {
	env := newTestEnv(nil)

	_, err := env.folderSvc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		WorkspaceID: testWS,
		Name:        "orphan",
		ParentID:    ptr("no-such-folder"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMoveFolderNoOp(t *testing.T) {
	env := newTestEnv(nil)
	parent := env.mustCreateFolder(t, testWS, "parent", nil)
	child := env.mustCreateFolder(t, testWS, "child", &parent.ID)

	moved, err := env.folderSvc.MoveFolder(context.Background(), child.ID, &parent.ID, testWS)
	if err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if moved.Name != "child" {
		t.Errorf("no-op move must not rename, got %q", moved.Name)
	}
}

func TestMoveFolderRejectsCycle(t *testing.T) {
	env := newTestEnv(nil)
	a, _, c := buildChain(t, env)

	_, err := env.folderSvc.MoveFolder(context.Background(), a, &c, testWS)
	if !errors.Is(err, domain.ErrValidation) {
		var invalid *domain.ValidationError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected validation rejection, got %v", err)
		}
	}

	// Tree untouched
	folder, _ := env.folderRepo.GetByID(context.Background(), a, testWS)
	if folder.ParentID != nil {
		t.Error("rejected move must not change the parent")
	}
}

func TestMoveFolderResolvesNameCollision(t *testing.T) {
	env := newTestEnv(nil)
	src := env.mustCreateFolder(t, testWS, "src", nil)
	dst := env.mustCreateFolder(t, testWS, "dst", nil)
	moving := env.mustCreateFolder(t, testWS, "docs", &src.ID)
	env.mustCreateFolder(t, testWS, "docs", &dst.ID)

	moved, err := env.folderSvc.MoveFolder(context.Background(), moving.ID, &dst.ID, testWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.Name != "docs (1)" {
		t.Errorf("expected auto-suffixed name %q, got %q", "docs (1)", moved.Name)
	}
	if moved.ParentID == nil || *moved.ParentID != dst.ID {
		t.Error("expected folder under destination")
	}
}

func TestMoveFolderToRoot(t *testing.T) {
	env := newTestEnv(nil)
	parent := env.mustCreateFolder(t, testWS, "parent", nil)
	child := env.mustCreateFolder(t, testWS, "child", &parent.ID)

	moved, err := env.folderSvc.MoveFolder(context.Background(), child.ID, nil, testWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.ParentID != nil {
		t.Error("expected root-level placement")
	}
}

func TestRenameFolderConflictSurfaces(t *testing.T) {
	env := newTestEnv(nil)
	env.mustCreateFolder(t, testWS, "taken", nil)
	folder := env.mustCreateFolder(t, testWS, "mine", nil)

	// Explicit renames are never auto-suffixed
	name := "taken"
	_, err := env.folderSvc.UpdateFolder(context.Background(), folder.ID, &services.UpdateFolderRequest{
		WorkspaceID: testWS,
		Name:        &name,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestSiblingUniquenessAfterMoves(t *testing.T) {
	env := newTestEnv(nil)
	dst := env.mustCreateFolder(t, testWS, "dst", nil)
	env.mustCreateFolder(t, testWS, "Docs", &dst.ID)

	for i := 0; i < 3; i++ {
		src := env.mustCreateFolder(t, testWS, "src"+string(rune('a'+i)), nil)
		moving := env.mustCreateFolder(t, testWS, "docs", &src.ID)
		if _, err := env.folderSvc.MoveFolder(context.Background(), moving.ID, &dst.ID, testWS); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}

	children, _ := env.folderRepo.ListChildren(context.Background(), &dst.ID, testWS)
	seen := map[string]bool{}
	for _, child := range children {
		key := strings.ToLower(child.Name)
		if seen[key] {
			t.Errorf("duplicate sibling name %q", child.Name)
		}
		seen[key] = true
	}
	if len(children) != 4 {
		t.Errorf("expected 4 children, got %d", len(children))
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	root := env.mustCreateFolder(t, testWS, "project", nil)
	sub := env.mustCreateFolder(t, testWS, "assets", &root.ID)
	empty := env.mustCreateFolder(t, testWS, "notes", &sub.ID)
	f1 := env.mustUploadFile(t, testWS, "readme.md", &root.ID, "hello")
	f2 := env.mustUploadFile(t, testWS, "logo.png", &sub.ID, "png-bytes")

	// Bind a link to a descendant so the cascade must deactivate it
	link, err := env.binder.BindNew(ctx, &services.BindNewRequest{WorkspaceID: testWS, FolderID: sub.ID})
	if err != nil {
		t.Fatalf("bind link: %v", err)
	}

	if err := env.folderSvc.DeleteFolder(ctx, root.ID, testWS); err != nil {
		t.Fatalf("delete folder: %v", err)
	}

	for _, id := range []string{root.ID, sub.ID, empty.ID} {
		if _, ok := env.store.folders[id]; ok {
			t.Errorf("folder %s should be deleted", id)
		}
	}
	for _, id := range []string{f1.ID, f2.ID} {
		if _, ok := env.store.files[id]; ok {
			t.Errorf("file record %s should be deleted", id)
		}
	}
	for _, key := range []string{f1.StorageKey, f2.StorageKey} {
		if exists, _ := env.blobs.Exists(ctx, key); exists {
			t.Errorf("blob %s should be deleted", key)
		}
	}

	// The link survives, deactivated
	stored, ok := env.store.links[link.ID]
	if !ok {
		t.Fatal("link row must be preserved")
	}
	if stored.Active {
		t.Error("link must be deactivated by the cascade")
	}
}

func TestDeleteFolderStorageFailureKeepsRecords(t *testing.T) {
	mem := memory.New()
	flaky := &flakyBlobStore{BlobStore: mem, failDelete: map[string]error{}}
	env := newTestEnv(flaky)
	ctx := context.Background()

	root := env.mustCreateFolder(t, testWS, "project", nil)
	file := env.mustUploadFile(t, testWS, "readme.md", &root.ID, "hello")

	flaky.failDelete[file.StorageKey] = errors.New("503 slow down")

	err := env.folderSvc.DeleteFolder(ctx, root.ID, testWS)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}

	// Nothing deleted: the tree stays inspectable
	if _, ok := env.store.folders[root.ID]; !ok {
		t.Error("folder record must be retained after storage failure")
	}
	if _, ok := env.store.files[file.ID]; !ok {
		t.Error("file record must be retained after storage failure")
	}
}

func TestListChildren(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	parent := env.mustCreateFolder(t, testWS, "parent", nil)
	env.mustCreateFolder(t, testWS, "sub", &parent.ID)
	env.mustUploadFile(t, testWS, "file.txt", &parent.ID, "x")
	env.mustCreateFolder(t, testWS, "top", nil)

	contents, err := env.folderSvc.ListChildren(ctx, &parent.ID, testWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contents.Folder == nil || contents.Folder.ID != parent.ID {
		t.Error("expected parent folder in contents")
	}
	if len(contents.Folders) != 1 || len(contents.Files) != 1 {
		t.Errorf("expected 1 folder and 1 file, got %d and %d", len(contents.Folders), len(contents.Files))
	}

	rootContents, err := env.folderSvc.ListChildren(ctx, nil, testWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rootContents.Folder != nil {
		t.Error("root listing has no folder")
	}
	if len(rootContents.Folders) != 2 {
		t.Errorf("expected 2 root folders, got %d", len(rootContents.Folders))
	}
}
