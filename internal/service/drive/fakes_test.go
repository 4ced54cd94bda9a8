package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"cubby/internal/config"
	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
	"cubby/internal/domain/repositories"
	services "cubby/internal/domain/services/drive"
	"cubby/internal/domain/storage"
	"cubby/internal/storage/memory"
)

// fakeStore is shared in-memory state behind the fake repositories,
// mirroring the constraint behavior of the postgres layer (scoped
// lookups, case-insensitive sibling uniqueness, conflict details).
type fakeStore struct {
	folders map[string]*models.Folder
	files   map[string]*models.File
	links   map[string]*models.Link
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		folders: make(map[string]*models.Folder),
		files:   make(map[string]*models.File),
		links:   make(map[string]*models.Link),
	}
}

type fakeFolderRepo struct{ s *fakeStore }
type fakeFileRepo struct{ s *fakeStore }
type fakeLinkRepo struct{ s *fakeStore }

type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if existing := r.findSibling(folder.WorkspaceID, folder.ParentID, folder.Name, folder.ID); existing != "" {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing,
		}
	}
	clone := *folder
	r.s.folders[folder.ID] = &clone
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id, workspaceID string) (*models.Folder, error) {
	folder, ok := r.s.folders[id]
	if !ok || folder.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	clone := *folder
	return &clone, nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	stored, ok := r.s.folders[folder.ID]
	if !ok || stored.WorkspaceID != folder.WorkspaceID {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	if existing := r.findSibling(folder.WorkspaceID, folder.ParentID, folder.Name, folder.ID); existing != "" {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing,
		}
	}
	clone := *folder
	r.s.folders[folder.ID] = &clone
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id, workspaceID string) error {
	folder, ok := r.s.folders[id]
	if !ok || folder.WorkspaceID != workspaceID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, parentID *string, workspaceID string) ([]models.Folder, error) {
	out := []models.Folder{}
	for _, folder := range r.s.folders {
		if folder.WorkspaceID == workspaceID && sameParent(folder.ParentID, parentID) {
			out = append(out, *folder)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *fakeFolderRepo) GetByLinkID(ctx context.Context, linkID, workspaceID string) (*models.Folder, error) {
	for _, folder := range r.s.folders {
		if folder.WorkspaceID == workspaceID && folder.LinkID != nil && *folder.LinkID == linkID {
			clone := *folder
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("no folder bound to link %s: %w", linkID, domain.ErrNotFound)
}

func (r *fakeFolderRepo) GetPath(ctx context.Context, folderID *string, workspaceID string) (string, error) {
	if folderID == nil {
		return "", nil
	}
	segments := []string{}
	currentID := *folderID
	for {
		folder, ok := r.s.folders[currentID]
		if !ok || folder.WorkspaceID != workspaceID {
			return "", fmt.Errorf("folder %s: %w", currentID, domain.ErrNotFound)
		}
		segments = append([]string{folder.Name}, segments...)
		if folder.ParentID == nil {
			return strings.Join(segments, "/"), nil
		}
		currentID = *folder.ParentID
	}
}

func (r *fakeFolderRepo) GetAllByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	out := []models.Folder{}
	for _, folder := range r.s.folders {
		if folder.WorkspaceID == workspaceID {
			out = append(out, *folder)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) ListDescendants(ctx context.Context, folderID, workspaceID string) (*models.DescendantSet, error) {
	set := &models.DescendantSet{
		Folders: []models.DescendantFolder{},
		Files:   []models.DescendantFile{},
	}

	var walk func(parentID, prefix string)
	walk = func(parentID, prefix string) {
		children, _ := r.ListChildren(ctx, &parentID, workspaceID)
		for _, child := range children {
			relPath := prefix + child.Name
			set.Folders = append(set.Folders, models.DescendantFolder{
				ID:       child.ID,
				Name:     child.Name,
				ParentID: parentID,
				LinkID:   child.LinkID,
				RelPath:  relPath,
			})
			walk(child.ID, relPath+"/")
		}
		for _, file := range r.s.files {
			if file.WorkspaceID == workspaceID && file.FolderID != nil && *file.FolderID == parentID {
				set.Files = append(set.Files, models.DescendantFile{
					ID:          file.ID,
					Name:        file.Name,
					FolderID:    parentID,
					RelPath:     prefix + file.Name,
					StorageKey:  file.StorageKey,
					Size:        file.Size,
					ContentType: file.ContentType,
				})
			}
		}
	}
	walk(folderID, "")

	sort.Slice(set.Files, func(i, j int) bool { return set.Files[i].RelPath < set.Files[j].RelPath })
	return set, nil
}

func (r *fakeFolderRepo) findSibling(workspaceID string, parentID *string, name, excludeID string) string {
	for _, folder := range r.s.folders {
		if folder.ID != excludeID &&
			folder.WorkspaceID == workspaceID &&
			sameParent(folder.ParentID, parentID) &&
			strings.EqualFold(folder.Name, name) {
			return folder.ID
		}
	}
	return ""
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if existing := r.findSibling(file.WorkspaceID, file.FolderID, file.Name, file.ID); existing != "" {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
			ResourceType: "file",
			ResourceID:   existing,
		}
	}
	clone := *file
	r.s.files[file.ID] = &clone
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id, workspaceID string) (*models.File, error) {
	file, ok := r.s.files[id]
	if !ok || file.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	clone := *file
	return &clone, nil
}

func (r *fakeFileRepo) Update(ctx context.Context, file *models.File) error {
	stored, ok := r.s.files[file.ID]
	if !ok || stored.WorkspaceID != file.WorkspaceID {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	if existing := r.findSibling(file.WorkspaceID, file.FolderID, file.Name, file.ID); existing != "" {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
			ResourceType: "file",
			ResourceID:   existing,
		}
	}
	clone := *file
	r.s.files[file.ID] = &clone
	return nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id, workspaceID string) error {
	file, ok := r.s.files[id]
	if !ok || file.WorkspaceID != workspaceID {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.files, id)
	return nil
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, folderID *string, workspaceID string) ([]models.File, error) {
	out := []models.File{}
	for _, file := range r.s.files {
		if file.WorkspaceID == workspaceID && sameParent(file.FolderID, folderID) {
			out = append(out, *file)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *fakeFileRepo) GetAllByWorkspace(ctx context.Context, workspaceID string) ([]models.File, error) {
	out := []models.File{}
	for _, file := range r.s.files {
		if file.WorkspaceID == workspaceID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) GetPath(ctx context.Context, file *models.File) (string, error) {
	if file.FolderID == nil {
		return file.Name, nil
	}
	folderRepo := &fakeFolderRepo{s: r.s}
	folderPath, err := folderRepo.GetPath(ctx, file.FolderID, file.WorkspaceID)
	if err != nil {
		return file.Name, nil
	}
	return folderPath + "/" + file.Name, nil
}

func (r *fakeFileRepo) findSibling(workspaceID string, folderID *string, name, excludeID string) string {
	for _, file := range r.s.files {
		if file.ID != excludeID &&
			file.WorkspaceID == workspaceID &&
			sameParent(file.FolderID, folderID) &&
			strings.EqualFold(file.Name, name) {
			return file.ID
		}
	}
	return ""
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *models.Link) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	for _, existing := range r.s.links {
		if existing.Slug == link.Slug {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("link slug %q is already taken", link.Slug),
				ResourceType: "link",
			}
		}
	}
	clone := *link
	r.s.links[link.ID] = &clone
	return nil
}

func (r *fakeLinkRepo) GetByID(ctx context.Context, id, workspaceID string) (*models.Link, error) {
	link, ok := r.s.links[id]
	if !ok || link.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
	}
	clone := *link
	return &clone, nil
}

func (r *fakeLinkRepo) Update(ctx context.Context, link *models.Link) error {
	stored, ok := r.s.links[link.ID]
	if !ok || stored.WorkspaceID != link.WorkspaceID {
		return fmt.Errorf("link %s: %w", link.ID, domain.ErrNotFound)
	}
	clone := *link
	r.s.links[link.ID] = &clone
	return nil
}

func (r *fakeLinkRepo) List(ctx context.Context, workspaceID string) ([]models.Link, error) {
	out := []models.Link{}
	for _, link := range r.s.links {
		if link.WorkspaceID == workspaceID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, link := range r.s.links {
		if link.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// flakyBlobStore wraps a blob store and fails chosen operations, for
// exercising storage-first deletion and partial-failure accounting
type flakyBlobStore struct {
	storage.BlobStore
	failDelete map[string]error
	failOpen   map[string]error
}

func (f *flakyBlobStore) Delete(ctx context.Context, key string) error {
	if err, ok := f.failDelete[key]; ok {
		return err
	}
	return f.BlobStore.Delete(ctx, key)
}

func (f *flakyBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err, ok := f.failOpen[key]; ok {
		return nil, err
	}
	return f.BlobStore.Open(ctx, key)
}

// testEnv wires the engine against the fakes with a small depth budget
// so depth tests stay readable
type testEnv struct {
	store      *fakeStore
	blobs      storage.BlobStore
	limits     config.Limits
	folderRepo *fakeFolderRepo
	fileRepo   *fakeFileRepo
	linkRepo   *fakeLinkRepo
	folderSvc  services.FolderService
	fileSvc    services.FileService
	bulkSvc    services.BulkService
	binder     services.LinkBinder
	archiveSvc services.ArchiveService
}

func newTestEnv(blobs storage.BlobStore) *testEnv {
	store := newFakeStore()
	if blobs == nil {
		blobs = memory.New()
	}

	limits := config.DefaultLimits()
	limits.MaxFolderDepth = 5
	limits.MaxBulkItems = 10

	folderRepo := &fakeFolderRepo{s: store}
	fileRepo := &fakeFileRepo{s: store}
	linkRepo := &fakeLinkRepo{s: store}
	tx := fakeTxManager{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	folderSvc := NewFolderService(folderRepo, fileRepo, linkRepo, blobs, tx, limits, logger)
	fileSvc := NewFileService(fileRepo, folderRepo, blobs, tx, limits, logger)

	return &testEnv{
		store:      store,
		blobs:      blobs,
		limits:     limits,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		linkRepo:   linkRepo,
		folderSvc:  folderSvc,
		fileSvc:    fileSvc,
		bulkSvc:    NewBulkService(folderSvc, fileSvc, folderRepo, fileRepo, blobs, tx, limits, logger),
		binder:     NewLinkBinder(folderRepo, linkRepo, NewRepoLinkCreator(linkRepo), tx, limits, logger),
		archiveSvc: NewArchiveService(folderRepo, blobs, logger),
	}
}

// mustCreateFolder is a test helper for building fixture trees
func (e *testEnv) mustCreateFolder(t testingT, workspaceID, name string, parentID *string) *models.Folder {
	folder, err := e.folderSvc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		WorkspaceID: workspaceID,
		Name:        name,
		ParentID:    parentID,
	})
	if err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return folder
}

// mustUploadFile is a test helper for seeding files with content
func (e *testEnv) mustUploadFile(t testingT, workspaceID, name string, folderID *string, content string) *models.File {
	file, err := e.fileSvc.UploadFile(context.Background(), &services.UploadFileRequest{
		WorkspaceID: workspaceID,
		FolderID:    folderID,
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Content:     strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("upload file %q: %v", name, err)
	}
	return file
}

// testingT is the subset of *testing.T the helpers need
type testingT interface {
	Fatalf(format string, args ...any)
}

func ptr(s string) *string { return &s }
