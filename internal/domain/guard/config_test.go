package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConfigValidate covers the empty set, unknown kinds and debounce bounds.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// Zero kinds enabled.
	cfg := new(Config)
	require.ErrorIs(t, cfg.Validate(), ErrNoKindsEnabled)

	// Unknown kind.
	cfg = &Config{EnabledKinds: []DetectionKind{"barometer_drop"}}
	require.ErrorIs(t, cfg.Validate(), ErrUnknownKind)

	// Link debounce below lower bound.
	cfg = &Config{
		EnabledKinds: []DetectionKind{KindLinkDisconnect},
		LinkDebounce: 2 * time.Second,
	}
	require.ErrorIs(t, cfg.Validate(), ErrDebounceOutOfRange)

	// Audio debounce above upper bound.
	cfg = &Config{
		EnabledKinds:  []DetectionKind{KindAudioRouteRemoved},
		AudioDebounce: time.Minute,
	}
	require.ErrorIs(t, cfg.Validate(), ErrDebounceOutOfRange)

	// Bounds of a disabled kind are not checked.
	cfg = &Config{
		EnabledKinds: []DetectionKind{KindPowerDisconnect},
		LinkDebounce: time.Hour,
	}
	require.NoError(t, cfg.Validate())
}

// TestConfigValidate_AppliesDefaults ensures zero durations for enabled kinds are filled.
func TestConfigValidate_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		EnabledKinds: []DetectionKind{
			KindLinkDisconnect,
			KindAudioRouteRemoved,
			KindOrientationPickup,
		},
	}

	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultLinkDebounce, cfg.LinkDebounce)
	require.Equal(t, DefaultAudioDebounce, cfg.AudioDebounce)
	require.Equal(t, DefaultOrientationDebounce, cfg.OrientationDebounce)
}

// TestConfigDebounceFor verifies per-kind lookup and the power kind's fixed zero.
func TestConfigDebounceFor(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		EnabledKinds:        AllKinds(),
		LinkDebounce:        7 * time.Second,
		AudioDebounce:       4 * time.Second,
		OrientationDebounce: 2 * time.Second,
	}

	require.Equal(t, 7*time.Second, cfg.DebounceFor(KindLinkDisconnect))
	require.Equal(t, 4*time.Second, cfg.DebounceFor(KindAudioRouteRemoved))
	require.Equal(t, 2*time.Second, cfg.DebounceFor(KindOrientationPickup))
	require.Zero(t, cfg.DebounceFor(KindPowerDisconnect))
}

// TestConfigClone verifies the snapshot is deep-copied.
func TestConfigClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Config)(nil).Clone())

	cfg := &Config{
		EnabledKinds:  []DetectionKind{KindLinkDisconnect},
		ScopedPeerIDs: []string{"AA:BB:CC:DD:EE:FF"},
	}

	cloned := cfg.Clone()
	require.Equal(t, cfg, cloned)
	require.NotSame(t, cfg, cloned)

	cloned.EnabledKinds[0] = KindPowerDisconnect
	cloned.ScopedPeerIDs[0] = "11:22:33:44:55:66"
	require.Equal(t, KindLinkDisconnect, cfg.EnabledKinds[0])
	require.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.ScopedPeerIDs[0])
}

// TestKindLabels ensures every kind is valid and labelled.
func TestKindLabels(t *testing.T) {
	t.Parallel()

	for _, kind := range AllKinds() {
		require.True(t, kind.Valid())
		require.NotEmpty(t, kind.Label())
	}

	require.False(t, DetectionKind("barometer_drop").Valid())
}

// TestEpisode verifies identity stamping and cloning.
func TestEpisode(t *testing.T) {
	t.Parallel()

	episode := NewEpisode(KindPowerDisconnect)
	require.NotEmpty(t, episode.ID)
	require.Equal(t, KindPowerDisconnect, episode.Kind)
	require.False(t, episode.StartedAt.IsZero())

	cloned := episode.Clone()
	require.Equal(t, episode, cloned)
	require.NotSame(t, episode, cloned)
	require.Nil(t, (*Episode)(nil).Clone())
}
