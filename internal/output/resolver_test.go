package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFileResolver_ResolvesExistingFile returns the cleaned path.
func TestFileResolver_ResolvesExistingFile(t *testing.T) {
	t.Parallel()

	sound := filepath.Join(t.TempDir(), "klaxon.ogg")
	require.NoError(t, os.WriteFile(sound, []byte("riff"), 0o600))

	resolver := NewFileResolver("")

	resolved, err := resolver.Resolve(context.Background(), sound)
	require.NoError(t, err)
	require.Equal(t, sound, resolved)
}

// TestFileResolver_MissingFileFails surfaces the open error.
func TestFileResolver_MissingFileFails(t *testing.T) {
	t.Parallel()

	resolver := NewFileResolver("")

	_, err := resolver.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.ogg"))
	require.Error(t, err)
}

// TestFileResolver_DefaultSound maps the empty reference to the default,
// or fails when none is configured.
func TestFileResolver_DefaultSound(t *testing.T) {
	t.Parallel()

	sound := filepath.Join(t.TempDir(), "chime.ogg")
	require.NoError(t, os.WriteFile(sound, []byte("riff"), 0o600))

	resolved, err := NewFileResolver(sound).Resolve(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, sound, resolved)

	_, err = NewFileResolver("").Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrNoDefaultSound)
}
