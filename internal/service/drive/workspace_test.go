package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"cubby/internal/domain"
	models "cubby/internal/domain/models/drive"
)

type fakeWorkspaceRepo struct {
	byOwner map[string]*models.Workspace

	// missFirstLookup makes the first GetByOwner report NotFound even
	// when the row exists, mimicking a lost provisioning race
	missFirstLookup bool
	creates         int
}

func (r *fakeWorkspaceRepo) Create(ctx context.Context, ws *models.Workspace) error {
	r.creates++
	if _, ok := r.byOwner[ws.OwnerID]; ok {
		return &domain.ConflictError{Message: "workspace for owner already exists", ResourceType: "workspace"}
	}
	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}
	clone := *ws
	r.byOwner[ws.OwnerID] = &clone
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	for _, ws := range r.byOwner {
		if ws.ID == id {
			clone := *ws
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
}

func (r *fakeWorkspaceRepo) GetByOwner(ctx context.Context, ownerID string) (*models.Workspace, error) {
	if r.missFirstLookup {
		r.missFirstLookup = false
		return nil, fmt.Errorf("workspace for owner %s: %w", ownerID, domain.ErrNotFound)
	}
	ws, ok := r.byOwner[ownerID]
	if !ok {
		return nil, fmt.Errorf("workspace for owner %s: %w", ownerID, domain.ErrNotFound)
	}
	clone := *ws
	return &clone, nil
}

func newWorkspaceSvc(repo *fakeWorkspaceRepo) *workspaceService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorkspaceService(repo, logger).(*workspaceService)
}

func TestResolveProvisionsOnFirstContact(t *testing.T) {
	repo := &fakeWorkspaceRepo{byOwner: map[string]*models.Workspace{}}
	svc := newWorkspaceSvc(repo)

	ws, err := svc.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.ID == "" || ws.OwnerID != "user-1" {
		t.Errorf("expected provisioned workspace for user-1, got %+v", ws)
	}
	if ws.Name != "My Drive" {
		t.Errorf("expected default name, got %q", ws.Name)
	}
}

func TestResolveReturnsExisting(t *testing.T) {
	repo := &fakeWorkspaceRepo{byOwner: map[string]*models.Workspace{}}
	svc := newWorkspaceSvc(repo)

	first, err := svc.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected stable workspace, got %s then %s", first.ID, second.ID)
	}
	if repo.creates != 1 {
		t.Errorf("expected exactly one provisioning attempt, got %d", repo.creates)
	}
}

func TestResolveLosesProvisioningRace(t *testing.T) {
	repo := &fakeWorkspaceRepo{byOwner: map[string]*models.Workspace{}}
	svc := newWorkspaceSvc(repo)

	// The concurrent winner's row lands between our lookup and create:
	// the first lookup misses, Create conflicts, the retry lookup hits
	winner := &models.Workspace{ID: "ws-won", OwnerID: "user-1", Name: "My Drive"}
	repo.byOwner["user-1"] = winner
	repo.missFirstLookup = true

	ws, err := svc.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.ID != "ws-won" {
		t.Errorf("expected the winner's workspace, got %s", ws.ID)
	}
}
