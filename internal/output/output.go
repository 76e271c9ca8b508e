package output

import (
	"context"
	"time"
)

// MaxVolume is the level forced on the alarm channel while a siren runs.
const MaxVolume = 1.0

// DefaultHapticPattern is the repeating vibrate/pause cycle driven during
// an alarm episode.
//
//nolint:gochecknoglobals // Fixed pattern shared by every siren instance.
var DefaultHapticPattern = []time.Duration{
	500 * time.Millisecond,
	300 * time.Millisecond,
}

// Player drives looping sound playback on the alarm channel.
type Player interface {
	// Play starts the source, looping until Stop when loop is set.
	Play(ctx context.Context, source string, loop bool) error
	// Stop halts playback. Safe to call when nothing plays.
	Stop(ctx context.Context) error
}

// VolumeControl owns the alarm channel's volume, a process-global device
// resource. Only the siren may mutate it.
type VolumeControl interface {
	// Volume reports the current level in [0, 1].
	Volume(ctx context.Context) (float64, error)
	// SetVolume forces the level in [0, 1].
	SetVolume(ctx context.Context, level float64) error
}

// Haptics drives a repeating vibration pattern.
type Haptics interface {
	// Start begins repeating the on/off pattern until Stop.
	Start(ctx context.Context, pattern []time.Duration) error
	// Stop halts the pattern. Safe to call when nothing runs.
	Stop(ctx context.Context) error
}

// Resolver turns a configured sound reference into a playable source.
type Resolver interface {
	// Resolve returns the playable source for the reference, or an error
	// when the reference cannot be opened. An empty reference selects the
	// system default sound.
	Resolve(ctx context.Context, ref string) (string, error)
}

// Devices bundles the device handles the siren owns.
type Devices struct {
	// Player is the looping sound output.
	Player Player
	// Volume is the alarm channel volume handle.
	Volume VolumeControl
	// Haptics is the vibration driver.
	Haptics Haptics
	// Resolver maps sound references to playable sources.
	Resolver Resolver
}
