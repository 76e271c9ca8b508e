package settings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
)

// TestFileRepository_LoadMissing returns ErrNotFound for a fresh path.
func TestFileRepository_LoadMissing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "state.yaml"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileRepository_SaveLoadRoundtrip persists and reloads the full document.
func TestFileRepository_SaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "state.yaml"))

	state := &State{
		ProtectionActive: true,
		Config: &guard.Config{
			EnabledKinds:  []guard.DetectionKind{guard.KindPowerDisconnect, guard.KindLinkDisconnect},
			LinkDebounce:  8 * time.Second,
			ScopedPeerIDs: []string{"AA:BB:CC:DD:EE:FF"},
			SoundRef:      "klaxon.ogg",
		},
	}

	require.NoError(t, repo.Save(context.Background(), state))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, loaded.ProtectionActive)
	require.False(t, loaded.Timestamp.IsZero())
	require.Equal(t, state.Config, loaded.Config)

	// Saving does not mutate the caller's document.
	require.True(t, state.Timestamp.IsZero())
}

// TestStateClone verifies the config snapshot is deep-copied.
func TestStateClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*State)(nil).Clone())

	state := &State{
		ProtectionActive: true,
		Config: &guard.Config{
			EnabledKinds: []guard.DetectionKind{guard.KindPowerDisconnect},
		},
	}

	cloned := state.Clone()
	require.Equal(t, state, cloned)
	require.NotSame(t, state.Config, cloned.Config)
}
