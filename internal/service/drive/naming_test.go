package drive

import (
	"context"
	"errors"
	"testing"

	"cubby/internal/domain"
)

func neverExists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func existsIn(taken ...string) ExistsFunc {
	set := make(map[string]struct{}, len(taken))
	for _, name := range taken {
		set[name] = struct{}{}
	}
	return func(ctx context.Context, name string) (bool, error) {
		_, ok := set[name]
		return ok, nil
	}
}

func TestResolveNameNoCollision(t *testing.T) {
	got, err := ResolveName(context.Background(), "report.pdf", 1000, neverExists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "report.pdf" {
		t.Errorf("expected name unchanged, got %q", got)
	}
}

func TestResolveNameFirstSuffix(t *testing.T) {
	got, err := ResolveName(context.Background(), "a.txt", 1000, existsIn("a.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a (1).txt" {
		t.Errorf("expected %q, got %q", "a (1).txt", got)
	}
}

func TestResolveNameSkipsTakenSuffixes(t *testing.T) {
	got, err := ResolveName(context.Background(), "a.txt", 1000, existsIn("a.txt", "a (1).txt", "a (2).txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a (3).txt" {
		t.Errorf("expected %q, got %q", "a (3).txt", got)
	}
}

func TestResolveNameVariants(t *testing.T) {
	tests := []struct {
		name     string
		desired  string
		taken    []string
		expected string
	}{
		{
			name:     "no extension",
			desired:  "notes",
			taken:    []string{"notes"},
			expected: "notes (1)",
		},
		{
			name:     "dotfile keeps leading dot",
			desired:  ".env",
			taken:    []string{".env"},
			expected: ".env (1)",
		},
		{
			name:     "only last extension moves",
			desired:  "archive.tar.gz",
			taken:    []string{"archive.tar.gz"},
			expected: "archive.tar (1).gz",
		},
		{
			name:     "folder-style name with spaces",
			desired:  "Q3 Reports",
			taken:    []string{"Q3 Reports", "Q3 Reports (1)"},
			expected: "Q3 Reports (2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveName(context.Background(), tt.desired, 1000, existsIn(tt.taken...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestResolveNameBudgetExhausted(t *testing.T) {
	alwaysTaken := func(ctx context.Context, name string) (bool, error) {
		return true, nil
	}

	_, err := ResolveName(context.Background(), "a.txt", 5, alwaysTaken)
	if err == nil {
		t.Fatal("expected error after exhausting the probe budget")
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestResolveNamePropagatesCheckError(t *testing.T) {
	checkErr := errors.New("metadata store unavailable")
	failing := func(ctx context.Context, name string) (bool, error) {
		return false, checkErr
	}

	_, err := ResolveName(context.Background(), "a.txt", 1000, failing)
	if !errors.Is(err, checkErr) {
		t.Errorf("expected wrapped check error, got %v", err)
	}
}

func TestCombinedExistsReportsAnySource(t *testing.T) {
	combined := CombinedExists(neverExists, existsIn("a.txt"))

	collides, err := combined(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !collides {
		t.Error("expected collision reported by second source")
	}

	collides, err = combined(context.Background(), "b.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if collides {
		t.Error("expected no collision when no source reports one")
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name string
		stem string
		ext  string
	}{
		{"report.pdf", "report", ".pdf"},
		{"notes", "notes", ""},
		{".env", ".env", ""},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"trailing.", "trailing", "."},
	}

	for _, tt := range tests {
		stem, ext := splitName(tt.name)
		if stem != tt.stem || ext != tt.ext {
			t.Errorf("splitName(%q) = (%q, %q), expected (%q, %q)", tt.name, stem, ext, tt.stem, tt.ext)
		}
	}
}
