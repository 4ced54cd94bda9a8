package drive

import (
	"context"
	"errors"
	"testing"

	"cubby/internal/domain"
)

const testWS = "ws-1"

// buildChain creates root -> a -> b -> c and returns their ids
func buildChain(t *testing.T, env *testEnv) (a, b, c string) {
	fa := env.mustCreateFolder(t, testWS, "a", nil)
	fb := env.mustCreateFolder(t, testWS, "b", &fa.ID)
	fc := env.mustCreateFolder(t, testWS, "c", &fb.ID)
	return fa.ID, fb.ID, fc.ID
}

func TestWouldCreateCycle(t *testing.T) {
	env := newTestEnv(nil)
	a, b, c := buildChain(t, env)
	other := env.mustCreateFolder(t, testWS, "other", nil)

	guard := newTreeGuard(env.folderRepo, env.limits.MaxFolderDepth)

	tests := []struct {
		name     string
		moving   string
		target   string
		expected bool
	}{
		{"into itself", a, a, true},
		{"into direct child", a, b, true},
		{"into deep descendant", a, c, true},
		{"into unrelated folder", a, other.ID, false},
		{"child up is fine", c, a, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle, err := guard.wouldCreateCycle(context.Background(), tt.moving, tt.target, testWS)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cycle != tt.expected {
				t.Errorf("expected cycle=%v, got %v", tt.expected, cycle)
			}
		})
	}
}

func TestDepth(t *testing.T) {
	env := newTestEnv(nil)
	a, _, c := buildChain(t, env)

	guard := newTreeGuard(env.folderRepo, env.limits.MaxFolderDepth)

	depth, err := guard.depth(context.Background(), nil, testWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if depth != 0 {
		t.Errorf("root depth: expected 0, got %d", depth)
	}

	depth, err = guard.depth(context.Background(), &a, testWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if depth != 1 {
		t.Errorf("top-level folder depth: expected 1, got %d", depth)
	}

	depth, err = guard.depth(context.Background(), &c, testWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if depth != 3 {
		t.Errorf("nested folder depth: expected 3, got %d", depth)
	}
}

func TestCheckMoveTargetRejectsCycle(t *testing.T) {
	env := newTestEnv(nil)
	a, _, c := buildChain(t, env)

	guard := newTreeGuard(env.folderRepo, env.limits.MaxFolderDepth)

	err := guard.checkMoveTarget(context.Background(), a, &c, testWS)
	if err == nil {
		t.Fatal("expected cycle rejection")
	}
	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestCheckMoveTargetDepthBudget(t *testing.T) {
	env := newTestEnv(nil) // MaxFolderDepth = 5

	// Build a chain at the depth ceiling
	var parent *string
	var last string
	for _, name := range []string{"d1", "d2", "d3", "d4", "d5"} {
		folder := env.mustCreateFolder(t, testWS, name, parent)
		last = folder.ID
		parent = &folder.ID
	}

	loose := env.mustCreateFolder(t, testWS, "loose", nil)

	err := guardFor(env).checkMoveTarget(context.Background(), loose.ID, &last, testWS)
	if err == nil {
		t.Fatal("expected depth budget rejection")
	}
	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) {
		t.Errorf("expected ValidationError, got %v", err)
	}

	// One level higher fits
	fourth := env.store.folders[last].ParentID
	if err := guardFor(env).checkMoveTarget(context.Background(), loose.ID, fourth, testWS); err != nil {
		t.Errorf("expected move within budget to pass, got %v", err)
	}
}

func TestCheckMoveTargetRootAlwaysAllowed(t *testing.T) {
	env := newTestEnv(nil)
	a, _, _ := buildChain(t, env)

	if err := guardFor(env).checkMoveTarget(context.Background(), a, nil, testWS); err != nil {
		t.Errorf("expected root target to pass, got %v", err)
	}
}

func guardFor(env *testEnv) *treeGuard {
	return newTreeGuard(env.folderRepo, env.limits.MaxFolderDepth)
}
