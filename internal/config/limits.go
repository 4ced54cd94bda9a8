package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file display names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// MaxLinkNameLength is the maximum length for link names.
	MaxLinkNameLength = 255

	// MaxPathLength is the maximum length for full display paths.
	// Longer paths indicate overly deep hierarchies (anti-pattern).
	MaxPathLength = 1000
)

// Limits are the externally supplied tuning constants of the drive engine.
// They are deployment configuration, never hard-coded at call sites.
type Limits struct {
	// MaxFolderDepth bounds the parent-chain length (root children = depth 1)
	MaxFolderDepth int `yaml:"max_folder_depth"`

	// MaxBulkItems bounds the combined item count of one bulk operation
	MaxBulkItems int `yaml:"max_bulk_items"`

	// NameProbeBudget bounds "{stem} (N){ext}" collision probing
	NameProbeBudget int `yaml:"name_probe_budget"`

	// SlugProbeBudget bounds "-2", "-3", ... slug collision probing
	SlugProbeBudget int `yaml:"slug_probe_budget"`
}

// DefaultLimits returns the built-in limit values
func DefaultLimits() Limits {
	return Limits{
		MaxFolderDepth:  20,
		MaxBulkItems:    100,
		NameProbeBudget: 1000,
		SlugProbeBudget: 1000,
	}
}

// LoadLimits reads limits from the given YAML file, falling back to
// defaults for the file as a whole and for any field left at zero.
func LoadLimits(path string) (Limits, error) {
	limits := DefaultLimits()
	if path == "" {
		return limits, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("read limits file: %w", err)
	}

	var loaded Limits
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return limits, fmt.Errorf("parse limits file: %w", err)
	}

	if loaded.MaxFolderDepth > 0 {
		limits.MaxFolderDepth = loaded.MaxFolderDepth
	}
	if loaded.MaxBulkItems > 0 {
		limits.MaxBulkItems = loaded.MaxBulkItems
	}
	if loaded.NameProbeBudget > 0 {
		limits.NameProbeBudget = loaded.NameProbeBudget
	}
	if loaded.SlugProbeBudget > 0 {
		limits.SlugProbeBudget = loaded.SlugProbeBudget
	}

	return limits, nil
}
