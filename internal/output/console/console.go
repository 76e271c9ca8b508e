package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/logger"
	"github.com/oshokin/pocket-sentinel/internal/output"
)

// builtinChime is the source name of the always-available default sound.
const builtinChime = "builtin:chime"

// initialVolume is the pretend pre-alarm level of the memory volume handle.
const initialVolume = 0.5

// NewDevices returns console-backed alarm devices: playback and haptics
// are logged, volume lives in memory. Used in simulation mode and wherever
// no real audio stack is wired yet.
func NewDevices() output.Devices {
	return output.Devices{
		Player:   &logPlayer{},
		Volume:   newMemoryVolume(),
		Haptics:  &logHaptics{},
		Resolver: &chimeResolver{},
	}
}

// logPlayer logs playback transitions instead of producing sound.
type logPlayer struct{}

// Play logs the playback start.
func (*logPlayer) Play(ctx context.Context, source string, loop bool) error {
	logger.InfoKV(ctx, "ALARM PLAYBACK", "source", source, "loop", loop)

	return nil
}

// Stop logs the playback stop.
func (*logPlayer) Stop(ctx context.Context) error {
	logger.Info(ctx, "Alarm playback stopped")

	return nil
}

// memoryVolume keeps the alarm channel level in memory.
type memoryVolume struct {
	// mu guards level.
	mu sync.Mutex
	// level is the current volume in [0, 1].
	level float64
}

// newMemoryVolume creates a volume handle at the initial level.
func newMemoryVolume() *memoryVolume {
	return &memoryVolume{level: initialVolume}
}

// Volume reports the in-memory level.
func (v *memoryVolume) Volume(_ context.Context) (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level, nil
}

// SetVolume stores the level.
func (v *memoryVolume) SetVolume(_ context.Context, level float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.level = level

	return nil
}

// logHaptics logs the vibration pattern instead of driving a motor.
type logHaptics struct{}

// Start logs the pattern start.
func (*logHaptics) Start(ctx context.Context, pattern []time.Duration) error {
	logger.InfoKV(ctx, "Haptic pattern started", "pattern", fmt.Sprint(pattern))

	return nil
}

// Stop logs the pattern stop.
func (*logHaptics) Stop(ctx context.Context) error {
	logger.Info(ctx, "Haptic pattern stopped")

	return nil
}

// chimeResolver resolves custom references against the filesystem and
// always provides the built-in chime as the default.
type chimeResolver struct{}

// Resolve returns the built-in chime for an empty reference, or the
// cleaned file path when the referenced file exists.
func (*chimeResolver) Resolve(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return builtinChime, nil
	}

	path := filepath.Clean(ref)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("open sound %q: %w", path, err)
	}

	return path, nil
}
