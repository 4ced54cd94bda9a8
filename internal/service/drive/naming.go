package drive

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cubby/internal/domain"
)

// ExistsFunc reports whether a candidate name collides. A check may fan
// out over multiple sources (sibling records and blob keys) and must
// report true if any source collides.
type ExistsFunc func(ctx context.Context, name string) (bool, error)

// ResolveName returns desired unchanged when it does not collide;
// otherwise it probes "{stem} (1){ext}", "{stem} (2){ext}", ... until an
// unused candidate is found. The probe is bounded by budget; exhausting
// it returns a ConflictError so a pathological sibling set cannot spin
// the resolver forever.
func ResolveName(ctx context.Context, desired string, budget int, exists ExistsFunc) (string, error) {
	collides, err := exists(ctx, desired)
	if err != nil {
		return "", fmt.Errorf("check name %q: %w", desired, err)
	}
	if !collides {
		return desired, nil
	}

	stem, ext := splitName(desired)
	for n := 1; n <= budget; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		collides, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check name %q: %w", candidate, err)
		}
		if !collides {
			return candidate, nil
		}
	}

	return "", &domain.ConflictError{
		Message:      fmt.Sprintf("could not find a free name for %q after %d attempts", desired, budget),
		ResourceType: "name",
	}
}

// splitName separates a display name into stem and extension. Dotfiles
// like ".env" have no extension; "archive.tar.gz" splits at the last dot.
func splitName(name string) (stem, ext string) {
	ext = path.Ext(name)
	stem = strings.TrimSuffix(name, ext)
	if stem == "" {
		// The whole name is the "extension" (dotfile); treat it as stem
		return name, ""
	}
	return stem, ext
}

// CombinedExists fans a name check out over several sources, reporting a
// collision as soon as any source does
func CombinedExists(checks ...ExistsFunc) ExistsFunc {
	return func(ctx context.Context, name string) (bool, error) {
		for _, check := range checks {
			collides, err := check(ctx, name)
			if err != nil {
				return false, err
			}
			if collides {
				return true, nil
			}
		}
		return false, nil
	}
}
