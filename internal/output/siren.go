package output

import (
	"context"
	"fmt"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// Siren drives the alarm output for the duration of an episode: looping
// sound at forced maximum volume plus a repeating haptic pattern. Start
// and Stop are idempotent; the pre-existing volume is captured once and
// restored on Stop, never stacked across restarts.
//
// The siren is only ever driven from the orchestrator's owning context,
// so its state needs no locking.
type Siren struct {
	// devices are the owned device handles; the raw handles are never
	// exposed above this type.
	devices Devices

	// active reports a running siren.
	active bool
	// savedVolume is the single captured pre-alarm level.
	savedVolume float64
	// hasSaved reports whether savedVolume holds a captured value.
	hasSaved bool
}

// NewSiren creates a siren over the provided device handles.
func NewSiren(devices Devices) *Siren {
	return &Siren{devices: devices}
}

// Active reports whether the siren is currently running.
func (s *Siren) Active() bool {
	return s.active
}

// Start begins the alarm output with the given sound reference.
// Calling while already started first performs an implicit stop of the
// sound and haptics; the originally captured volume stays saved.
// A reference that cannot be resolved falls back to the system default
// sound; only an unplayable default fails the start.
func (s *Siren) Start(ctx context.Context, soundRef string) error {
	if s.active {
		s.silence(ctx)
	}

	source, err := s.resolve(ctx, soundRef)
	if err != nil {
		return fmt.Errorf("resolve alarm sound: %w", guard.ErrOutputUnavailable)
	}

	// Capture the pre-alarm level once; a restart without an intervening
	// Stop keeps the original saved value.
	if !s.hasSaved {
		level, volumeErr := s.devices.Volume.Volume(ctx)
		if volumeErr != nil {
			logger.WarnKV(ctx, "Cannot capture alarm channel volume", "error", volumeErr)
		} else {
			s.savedVolume = level
			s.hasSaved = true
		}
	}

	if err := s.devices.Volume.SetVolume(ctx, MaxVolume); err != nil {
		logger.WarnKV(ctx, "Cannot force alarm channel volume", "error", err)
	}

	if err := s.devices.Player.Play(ctx, source, true); err != nil {
		// Roll the volume back so a failed start leaves no trace.
		s.restoreVolume(ctx)

		return fmt.Errorf("play %q: %w", source, guard.ErrOutputUnavailable)
	}

	if err := s.devices.Haptics.Start(ctx, DefaultHapticPattern); err != nil {
		logger.WarnKV(ctx, "Cannot start haptic pattern", "error", err)
	}

	s.active = true

	logger.InfoKV(ctx, "Siren started", "source", source)

	return nil
}

// Stop ends the alarm output and restores the captured volume.
// Safe to call when not started.
func (s *Siren) Stop(ctx context.Context) {
	if !s.active {
		return
	}

	s.silence(ctx)
	s.restoreVolume(ctx)
	s.active = false

	logger.Info(ctx, "Siren stopped")
}

// resolve maps the reference to a playable source, falling back to the
// system default when the custom reference cannot be opened.
func (s *Siren) resolve(ctx context.Context, soundRef string) (string, error) {
	source, err := s.devices.Resolver.Resolve(ctx, soundRef)
	if err == nil {
		return source, nil
	}

	if soundRef != "" {
		logger.WarnKV(ctx, "Configured alarm sound unusable, falling back to default",
			"sound_ref", soundRef, "error", err)

		return s.devices.Resolver.Resolve(ctx, "")
	}

	return "", err
}

// silence stops sound and haptics without touching the saved volume.
func (s *Siren) silence(ctx context.Context) {
	if err := s.devices.Player.Stop(ctx); err != nil {
		logger.WarnKV(ctx, "Cannot stop alarm playback", "error", err)
	}

	if err := s.devices.Haptics.Stop(ctx); err != nil {
		logger.WarnKV(ctx, "Cannot stop haptic pattern", "error", err)
	}
}

// restoreVolume puts the captured pre-alarm level back, once.
func (s *Siren) restoreVolume(ctx context.Context) {
	if !s.hasSaved {
		return
	}

	if err := s.devices.Volume.SetVolume(ctx, s.savedVolume); err != nil {
		logger.WarnKV(ctx, "Cannot restore alarm channel volume", "error", err)
	}

	s.hasSaved = false
}
