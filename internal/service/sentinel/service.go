package sentinel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/detector"
	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/logger"
	"github.com/oshokin/pocket-sentinel/internal/output"
	repo "github.com/oshokin/pocket-sentinel/internal/repository/settings"
	"github.com/oshokin/pocket-sentinel/internal/runloop"
)

// Gateway is the presentation collaborator. Calls are fire-and-forget:
// the orchestrator never consumes a return value from the UI layer.
type Gateway interface {
	// ShowEpisode surfaces a freshly started alarm episode.
	ShowEpisode(ctx context.Context, episode *guard.Episode)
	// ShowStatus surfaces the current guard status, including degraded detectors.
	ShowStatus(ctx context.Context, status *guard.Status)
	// ClearEpisode retracts the episode presentation after dismissal.
	ClearEpisode(ctx context.Context)
}

// NopGateway is a Gateway that presents nothing.
type NopGateway struct{}

// ShowEpisode does nothing.
func (NopGateway) ShowEpisode(context.Context, *guard.Episode) {}

// ShowStatus does nothing.
func (NopGateway) ShowStatus(context.Context, *guard.Status) {}

// ClearEpisode does nothing.
func (NopGateway) ClearEpisode(context.Context) {}

// Service is the orchestrator: it owns the active detector set, the siren
// and the single alarm episode. Every mutating operation is serialized
// onto the run loop, the owning context; the public methods marshal onto
// it and must not be called from loop tasks.
//
// States: Idle (no detectors), Armed (detectors running, no episode),
// Alarming (exactly one episode, detectors still running).
type Service struct {
	// baseCtx carries the scoped logger for callbacks originating inside the loop.
	baseCtx context.Context
	// loop is the owning context executing all state mutations.
	loop *runloop.Loop
	// repo persists the configuration snapshot and protection flag.
	repo repo.Repository
	// siren is the owned alarm output.
	siren *output.Siren
	// gateway is the presentation collaborator.
	gateway Gateway
	// monitors are the hardware signal sources handed to detectors.
	monitors *hardware.Monitors
	// permissions gates source usage, nil allows everything.
	permissions detector.PermissionOracle

	// Loop-owned state below: touched only from loop tasks.

	// cfg is the active configuration snapshot, nil while Idle.
	cfg *guard.Config
	// detectors is the running detector set, empty while Idle.
	detectors []detector.Detector
	// episode is the single active alarm episode, nil unless Alarming.
	// Its existence is the sole source of truth for "alarm active".
	episode *guard.Episode
}

// NewService creates the orchestrator. The provided context scopes the
// logging of detector fires and other loop-internal activity.
func NewService(
	ctx context.Context,
	loop *runloop.Loop,
	repository repo.Repository,
	siren *output.Siren,
	gateway Gateway,
	monitors *hardware.Monitors,
	permissions detector.PermissionOracle,
) *Service {
	if gateway == nil {
		gateway = NopGateway{}
	}

	return &Service{
		baseCtx:     ctx,
		loop:        loop,
		repo:        repository,
		siren:       siren,
		gateway:     gateway,
		monitors:    monitors,
		permissions: permissions,
	}
}

// Arm validates the snapshot, replaces any running detector set with a
// fresh one and persists "protection active". A snapshot with zero
// enabled kinds is rejected and the previous state is kept.
func (s *Service) Arm(ctx context.Context, cfg *guard.Config) error {
	var armErr error

	err := s.loop.Do(ctx, func() {
		armErr = s.armOnLoop(ctx, cfg)
	})
	if err != nil {
		return err
	}

	return armErr
}

// armOnLoop performs the arm transition on the owning context.
func (s *Service) armOnLoop(ctx context.Context, cfg *guard.Config) error {
	snapshot := cfg.Clone()
	if snapshot == nil {
		return guard.ErrNoKindsEnabled
	}

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validate configuration: %w", err)
	}

	// Re-arming replaces the previous detector set wholesale.
	s.stopDetectorsOnLoop(ctx)

	detectors := make([]detector.Detector, 0, len(snapshot.EnabledKinds))

	for _, kind := range snapshot.EnabledKinds {
		deps := detector.Deps{
			Exec:        s.loop,
			Monitors:    s.monitors,
			Permissions: s.permissions,
		}

		d, err := detector.New(kind, deps, snapshot, s.onDetectorFired)
		if err != nil {
			return fmt.Errorf("build detector: %w", err)
		}

		d.StartDetection(ctx)
		detectors = append(detectors, d)
	}

	s.cfg = snapshot
	s.detectors = detectors

	logger.InfoKV(ctx, "Protection armed", "kinds", len(detectors))

	if err := s.persistOnLoop(ctx, true); err != nil {
		logger.ErrorKV(ctx, "Failed to persist protection state", "error", err)
	}

	s.publishStatusOnLoop(ctx)

	return nil
}

// Disarm silences any active alarm, stops every detector and persists
// "protection active = false". Safe to call while Idle.
func (s *Service) Disarm(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		s.disarmOnLoop(ctx)
	})
}

// disarmOnLoop performs the disarm transition on the owning context.
func (s *Service) disarmOnLoop(ctx context.Context) {
	if s.episode != nil {
		s.siren.Stop(ctx)
		s.episode = nil
		s.gateway.ClearEpisode(ctx)
	}

	s.stopDetectorsOnLoop(ctx)
	s.cfg = nil

	logger.Info(ctx, "Protection disarmed")

	if err := s.persistOnLoop(ctx, false); err != nil {
		logger.ErrorKV(ctx, "Failed to persist protection state", "error", err)
	}

	s.publishStatusOnLoop(ctx)
}

// Dismiss ends the active episode and returns the orchestrator to Armed;
// detectors keep running and are immediately eligible to re-trigger.
// A dismiss with no active episode is a reported no-op.
func (s *Service) Dismiss(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		s.dismissOnLoop(ctx)
	})
}

// dismissOnLoop performs the dismissal on the owning context.
func (s *Service) dismissOnLoop(ctx context.Context) {
	if s.episode == nil {
		logger.WarnKV(ctx, "Dismiss requested with no active alarm",
			"error", guard.ErrInvalidTransition)

		return
	}

	logger.InfoKV(ctx, "Alarm dismissed",
		"episode_id", s.episode.ID, "kind", s.episode.Kind)

	s.siren.Stop(ctx)
	s.episode = nil
	s.gateway.ClearEpisode(ctx)
	s.publishStatusOnLoop(ctx)
}

// Status returns a snapshot of the orchestrator state.
func (s *Service) Status(ctx context.Context) (*guard.Status, error) {
	var status *guard.Status

	err := s.loop.Do(ctx, func() {
		status = s.statusOnLoop()
	})
	if err != nil {
		return nil, err
	}

	return status, nil
}

// RecoverAfterRestart re-arms from the persisted snapshot when protection
// was active before an unplanned restart. A persisted snapshot with zero
// enabled kinds is treated as a disarm. Idempotent entry point for
// whatever start-up glue the platform provides.
func (s *Service) RecoverAfterRestart(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info(ctx, "No persisted guard state, starting idle")

			return nil
		}

		return fmt.Errorf("load guard state: %w", err)
	}

	if !state.ProtectionActive {
		logger.Info(ctx, "Protection was inactive before restart")

		return nil
	}

	if state.Config == nil || len(state.Config.EnabledKinds) == 0 {
		logger.Warn(ctx, "Persisted protection active with empty configuration, disarming")

		return s.Disarm(ctx)
	}

	logger.InfoKV(ctx, "Re-arming after restart", "kinds", len(state.Config.EnabledKinds))

	return s.Arm(ctx, state.Config)
}

// Stop halts detectors, siren and the owning context. The persisted
// protection flag is left untouched so the next start can recover.
func (s *Service) Stop(ctx context.Context) {
	_ = s.loop.Do(ctx, func() {
		s.stopDetectorsOnLoop(ctx)
		s.siren.Stop(ctx)
		s.episode = nil
	})

	s.loop.Stop()
}

// onDetectorFired is the shared detector callback, invoked on the owning
// context when a debounce elapses uninterrupted. The first fire wins:
// while an episode exists, later fires are dropped, not queued.
func (s *Service) onDetectorFired(kind guard.DetectionKind) {
	ctx := s.baseCtx

	if s.episode != nil {
		logger.InfoKV(ctx, "Detector fired while alarm already active, ignored",
			"kind", kind, "episode_id", s.episode.ID)

		return
	}

	episode := guard.NewEpisode(kind)

	soundRef := ""
	if s.cfg != nil {
		soundRef = s.cfg.SoundRef
	}

	if err := s.siren.Start(ctx, soundRef); err != nil {
		// No episode without a siren: roll back and keep detectors running.
		logger.ErrorKV(ctx, "Alarm output failed, episode rolled back",
			"kind", kind, "error", err)
		s.publishStatusOnLoop(ctx)

		return
	}

	s.episode = episode

	logger.InfoKV(ctx, "ALARM", "kind", kind, "label", kind.Label(), "episode_id", episode.ID)

	s.gateway.ShowEpisode(ctx, episode.Clone())
	s.publishStatusOnLoop(ctx)
}

// statusOnLoop builds a status snapshot on the owning context.
func (s *Service) statusOnLoop() *guard.Status {
	status := &guard.Status{
		Timestamp:   time.Now(),
		Armed:       len(s.detectors) > 0,
		AlarmActive: s.episode != nil,
		Episode:     s.episode.Clone(),
	}

	for _, d := range s.detectors {
		status.Detectors = append(status.Detectors, guard.DetectorStatus{
			Kind:     d.Kind(),
			Label:    d.Kind().Label(),
			Armed:    true,
			Degraded: d.Degraded(),
		})
	}

	return status
}

// publishStatusOnLoop pushes the current snapshot to the presentation layer.
func (s *Service) publishStatusOnLoop(ctx context.Context) {
	s.gateway.ShowStatus(ctx, s.statusOnLoop())
}

// stopDetectorsOnLoop stops every running detector. Stop failures cannot
// leave survivors: each detector is stopped independently.
func (s *Service) stopDetectorsOnLoop(ctx context.Context) {
	for _, d := range s.detectors {
		d.StopDetection(ctx)
	}

	s.detectors = nil
}

// persistOnLoop writes the protection flag and active snapshot to disk.
func (s *Service) persistOnLoop(ctx context.Context, active bool) error {
	if s.repo == nil {
		return nil
	}

	state := &repo.State{
		ProtectionActive: active,
		Config:           s.cfg.Clone(),
	}

	return s.repo.Save(ctx, state)
}
