package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoDefaultSound is returned when no system default sound is configured.
var ErrNoDefaultSound = errors.New("no default alarm sound configured")

// FileResolver resolves sound references against the filesystem.
// An empty reference selects the configured system default sound.
type FileResolver struct {
	// defaultSource is the path played when no custom reference resolves.
	defaultSource string
}

// NewFileResolver creates a resolver with the given system default sound path.
func NewFileResolver(defaultSource string) *FileResolver {
	return &FileResolver{defaultSource: defaultSource}
}

// Resolve verifies the referenced file exists and returns its cleaned path.
func (r *FileResolver) Resolve(_ context.Context, ref string) (string, error) {
	if ref == "" {
		if r.defaultSource == "" {
			return "", ErrNoDefaultSound
		}

		ref = r.defaultSource
	}

	path := filepath.Clean(ref)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("open sound %q: %w", path, err)
	}

	return path, nil
}
