package guard

import (
	"fmt"
	"time"
)

// Debounce bounds per detection kind. Power has no debounce and fires immediately.
const (
	// MinLinkDebounce is the shortest allowed wireless-link debounce.
	MinLinkDebounce = 5 * time.Second
	// MaxLinkDebounce is the longest allowed wireless-link debounce.
	MaxLinkDebounce = 30 * time.Second
	// MinAudioDebounce is the shortest allowed audio-route debounce.
	MinAudioDebounce = 2 * time.Second
	// MaxAudioDebounce is the longest allowed audio-route debounce.
	MaxAudioDebounce = 10 * time.Second
	// MinOrientationDebounce is the shortest allowed pickup debounce.
	MinOrientationDebounce = 1 * time.Second
	// MaxOrientationDebounce is the longest allowed pickup debounce.
	MaxOrientationDebounce = 5 * time.Second

	// DefaultLinkDebounce is used when an enabled link kind carries no duration.
	DefaultLinkDebounce = 10 * time.Second
	// DefaultAudioDebounce is used when an enabled audio kind carries no duration.
	DefaultAudioDebounce = 3 * time.Second
	// DefaultOrientationDebounce is used when an enabled pickup kind carries no duration.
	DefaultOrientationDebounce = 2 * time.Second
)

// Config is the arm-time configuration snapshot. It is treated as a value:
// re-arming requires a fresh snapshot, the orchestrator never mutates one in place.
type Config struct {
	// EnabledKinds lists the detection kinds to arm.
	EnabledKinds []DetectionKind `yaml:"enabled_kinds" json:"enabled_kinds"`
	// LinkDebounce is the wireless-link debounce window.
	LinkDebounce time.Duration `yaml:"link_debounce" json:"link_debounce"`
	// AudioDebounce is the audio-route debounce window.
	AudioDebounce time.Duration `yaml:"audio_debounce" json:"audio_debounce"`
	// OrientationDebounce is the pickup debounce window.
	OrientationDebounce time.Duration `yaml:"orientation_debounce" json:"orientation_debounce"`
	// ScopedPeerIDs restricts the link detector to specific paired peers.
	// Empty means every peer connected at arm time is monitored.
	ScopedPeerIDs []string `yaml:"scoped_peer_ids,omitempty" json:"scoped_peer_ids,omitempty"`
	// SoundRef names the alarm sound to play. Empty or unresolvable
	// references fall back to the system default sound.
	SoundRef string `yaml:"sound_ref,omitempty" json:"sound_ref,omitempty"`
}

// Clone returns a deep copy of the configuration snapshot.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	cloned := *c
	cloned.EnabledKinds = append([]DetectionKind(nil), c.EnabledKinds...)
	cloned.ScopedPeerIDs = append([]string(nil), c.ScopedPeerIDs...)

	return &cloned
}

// Enabled reports whether the given kind is part of the snapshot.
func (c *Config) Enabled(kind DetectionKind) bool {
	for _, k := range c.EnabledKinds {
		if k == kind {
			return true
		}
	}

	return false
}

// DebounceFor returns the debounce window for the given kind.
// Power disconnection has no debounce and always returns zero.
func (c *Config) DebounceFor(kind DetectionKind) time.Duration {
	switch kind {
	case KindLinkDisconnect:
		return c.LinkDebounce
	case KindAudioRouteRemoved:
		return c.AudioDebounce
	case KindOrientationPickup:
		return c.OrientationDebounce
	case KindPowerDisconnect:
		return 0
	default:
		return 0
	}
}

// Validate checks the snapshot: at least one known kind must be enabled and
// every debounce must sit inside its per-kind bounds. Zero durations for
// enabled kinds are filled with defaults first.
func (c *Config) Validate() error {
	if len(c.EnabledKinds) == 0 {
		return ErrNoKindsEnabled
	}

	for _, kind := range c.EnabledKinds {
		if !kind.Valid() {
			return fmt.Errorf("%q: %w", kind, ErrUnknownKind)
		}
	}

	c.applyDefaults()

	checks := []struct {
		kind     DetectionKind
		value    time.Duration
		min, max time.Duration
	}{
		{KindLinkDisconnect, c.LinkDebounce, MinLinkDebounce, MaxLinkDebounce},
		{KindAudioRouteRemoved, c.AudioDebounce, MinAudioDebounce, MaxAudioDebounce},
		{KindOrientationPickup, c.OrientationDebounce, MinOrientationDebounce, MaxOrientationDebounce},
	}

	for _, check := range checks {
		if !c.Enabled(check.kind) {
			continue
		}

		if check.value < check.min || check.value > check.max {
			return fmt.Errorf("%s debounce %s outside [%s, %s]: %w",
				check.kind, check.value, check.min, check.max, ErrDebounceOutOfRange)
		}
	}

	return nil
}

// applyDefaults fills zero debounce durations for enabled kinds.
func (c *Config) applyDefaults() {
	if c.Enabled(KindLinkDisconnect) && c.LinkDebounce == 0 {
		c.LinkDebounce = DefaultLinkDebounce
	}

	if c.Enabled(KindAudioRouteRemoved) && c.AudioDebounce == 0 {
		c.AudioDebounce = DefaultAudioDebounce
	}

	if c.Enabled(KindOrientationPickup) && c.OrientationDebounce == 0 {
		c.OrientationDebounce = DefaultOrientationDebounce
	}
}
