package sentinel

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/hardware/sim"
	"github.com/oshokin/pocket-sentinel/internal/output"
	repository "github.com/oshokin/pocket-sentinel/internal/repository/settings"
	"github.com/oshokin/pocket-sentinel/internal/runloop"
)

var errBrokenSpeaker = errors.New("broken speaker")

// fakeGateway records presentation calls for assertion.
type fakeGateway struct {
	// mu guards the recorded calls.
	mu sync.Mutex
	// episodes collects every ShowEpisode payload.
	episodes []*guard.Episode
	// cleared counts ClearEpisode calls.
	cleared int
	// statuses collects every ShowStatus payload.
	statuses []*guard.Status
}

// ShowEpisode records the episode.
func (g *fakeGateway) ShowEpisode(_ context.Context, episode *guard.Episode) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.episodes = append(g.episodes, episode)
}

// ShowStatus records the snapshot.
func (g *fakeGateway) ShowStatus(_ context.Context, status *guard.Status) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.statuses = append(g.statuses, status)
}

// ClearEpisode counts the retraction.
func (g *fakeGateway) ClearEpisode(_ context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cleared++
}

// snapshot returns copies of the recorded calls.
func (g *fakeGateway) snapshot() (episodes []*guard.Episode, cleared int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]*guard.Episode(nil), g.episodes...), g.cleared
}

// fakePlayer records playback transitions, optionally failing Play.
type fakePlayer struct {
	// mu guards the fields below.
	mu sync.Mutex
	// playErr fails every Play when set.
	playErr error
	// playing is the current source, empty when stopped.
	playing string
}

// Play starts playback or fails with the scripted error.
func (p *fakePlayer) Play(_ context.Context, source string, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playErr != nil {
		return p.playErr
	}

	p.playing = source

	return nil
}

// Stop clears the playing source.
func (p *fakePlayer) Stop(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = ""

	return nil
}

// current reports the playing source.
func (p *fakePlayer) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

// fakeVolume is an in-memory volume channel.
type fakeVolume struct {
	// mu guards level.
	mu sync.Mutex
	// level is the current channel volume.
	level float64
}

// Volume reports the current level.
func (v *fakeVolume) Volume(_ context.Context) (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level, nil
}

// SetVolume stores the level.
func (v *fakeVolume) SetVolume(_ context.Context, level float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.level = level

	return nil
}

// current reports the level.
func (v *fakeVolume) current() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.level
}

// fakeHaptics ignores every call.
type fakeHaptics struct{}

// Start does nothing.
func (fakeHaptics) Start(context.Context, []time.Duration) error { return nil }

// Stop does nothing.
func (fakeHaptics) Stop(context.Context) error { return nil }

// fakeResolver passes references through and maps "" to a default.
type fakeResolver struct{}

// Resolve maps the reference.
func (fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "default-chime", nil
	}

	return ref, nil
}

// harness bundles an orchestrator over simulated hardware and fakes.
type harness struct {
	svc     *Service
	gateway *fakeGateway
	power   *sim.PowerMonitor
	link    *sim.LinkMonitor
	player  *fakePlayer
	volume  *fakeVolume
	repo    *repository.FileRepository
}

// newHarness builds a fresh orchestrator wired to simulated monitors.
func newHarness(t *testing.T) *harness {
	t.Helper()

	monitors, power, link, _, _ := sim.NewMonitors()

	var (
		loop   = runloop.New()
		player = &fakePlayer{}
		volume = &fakeVolume{level: 0.3}
	)

	siren := output.NewSiren(output.Devices{
		Player:   player,
		Volume:   volume,
		Haptics:  fakeHaptics{},
		Resolver: fakeResolver{},
	})

	repo := repository.NewFileRepository(filepath.Join(t.TempDir(), "state.yaml"))
	gateway := &fakeGateway{}
	svc := NewService(context.Background(), loop, repo, siren, gateway, monitors, nil)

	t.Cleanup(func() {
		svc.Stop(context.Background())
	})

	return &harness{
		svc:     svc,
		gateway: gateway,
		power:   power,
		link:    link,
		player:  player,
		volume:  volume,
		repo:    repo,
	}
}

// status fetches a snapshot through the loop, which also acts as a
// barrier: every event posted before the call has been processed.
func (h *harness) status(t *testing.T) *guard.Status {
	t.Helper()

	status, err := h.svc.Status(context.Background())
	require.NoError(t, err)

	return status
}

// powerOnly is the minimal arming configuration.
func powerOnly() *guard.Config {
	return &guard.Config{
		EnabledKinds: []guard.DetectionKind{guard.KindPowerDisconnect},
	}
}

// TestService_ArmRejectsEmptyConfig keeps the orchestrator idle when no
// kinds are enabled.
func TestService_ArmRejectsEmptyConfig(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	err := h.svc.Arm(context.Background(), &guard.Config{})
	require.ErrorIs(t, err, guard.ErrNoKindsEnabled)

	require.False(t, h.status(t).Armed)
}

// TestService_ArmDisarmRoundtrip arms two kinds, checks the snapshot and
// persistence, then disarms back to idle.
func TestService_ArmDisarmRoundtrip(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	cfg := &guard.Config{
		EnabledKinds: []guard.DetectionKind{
			guard.KindPowerDisconnect,
			guard.KindLinkDisconnect,
		},
	}
	require.NoError(t, h.svc.Arm(ctx, cfg))

	status := h.status(t)
	require.True(t, status.Armed)
	require.False(t, status.AlarmActive)
	require.Len(t, status.Detectors, 2)

	persisted, err := h.repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, persisted.ProtectionActive)
	require.Equal(t, cfg.EnabledKinds, persisted.Config.EnabledKinds)

	require.NoError(t, h.svc.Disarm(ctx))
	require.False(t, h.status(t).Armed)

	persisted, err = h.repo.Load(ctx)
	require.NoError(t, err)
	require.False(t, persisted.ProtectionActive)
}

// TestService_PowerDisconnectRaisesAlarm covers the charger-theft flow:
// unplug fires immediately, the siren plays at full volume and the
// episode is published.
func TestService_PowerDisconnectRaisesAlarm(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Arm(ctx, powerOnly()))

	h.power.SetPowered(false)

	status := h.status(t)
	require.True(t, status.AlarmActive)
	require.NotNil(t, status.Episode)
	require.Equal(t, guard.KindPowerDisconnect, status.Episode.Kind)

	require.Equal(t, "default-chime", h.player.current())
	require.Equal(t, output.MaxVolume, h.volume.current())

	episodes, _ := h.gateway.snapshot()
	require.Len(t, episodes, 1)
	require.Equal(t, status.Episode.ID, episodes[0].ID)
}

// TestService_FirstTriggerWins drops detector fires while an episode is
// active instead of starting a second one.
func TestService_FirstTriggerWins(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Arm(ctx, powerOnly()))

	h.power.SetPowered(false)
	first := h.status(t).Episode
	require.NotNil(t, first)

	// A second disconnect while alarming must not spawn a new episode.
	h.power.SetPowered(true)
	h.power.SetPowered(false)

	// Neither does a fire from a different detector kind.
	require.NoError(t, h.svc.loop.Do(ctx, func() {
		h.svc.onDetectorFired(guard.KindAudioRouteRemoved)
	}))

	status := h.status(t)
	require.True(t, status.AlarmActive)
	require.Equal(t, first.ID, status.Episode.ID)
	require.Equal(t, guard.KindPowerDisconnect, status.Episode.Kind)

	episodes, _ := h.gateway.snapshot()
	require.Len(t, episodes, 1)
}

// TestService_DismissReturnsToArmed ends the episode, keeps detectors
// running and allows an immediate re-trigger with a fresh episode.
func TestService_DismissReturnsToArmed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Arm(ctx, powerOnly()))
	h.power.SetPowered(false)

	first := h.status(t).Episode
	require.NotNil(t, first)

	require.NoError(t, h.svc.Dismiss(ctx))

	status := h.status(t)
	require.True(t, status.Armed)
	require.False(t, status.AlarmActive)
	require.Empty(t, h.player.current())
	require.Equal(t, 0.3, h.volume.current())

	_, cleared := h.gateway.snapshot()
	require.Equal(t, 1, cleared)

	// Detectors stay hot: the next disconnect starts a new episode.
	h.power.SetPowered(true)
	h.power.SetPowered(false)

	status = h.status(t)
	require.True(t, status.AlarmActive)
	require.NotEqual(t, first.ID, status.Episode.ID)
}

// TestService_DismissWithoutAlarmIsNoOp verifies a stray dismiss never
// fails, armed or idle.
func TestService_DismissWithoutAlarmIsNoOp(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Dismiss(ctx))

	require.NoError(t, h.svc.Arm(ctx, powerOnly()))
	require.NoError(t, h.svc.Dismiss(ctx))
	require.NoError(t, h.svc.Dismiss(ctx))

	require.True(t, h.status(t).Armed)
}

// TestService_OutputFailureRollsBackEpisode keeps detectors running and
// records no episode when the siren cannot start.
func TestService_OutputFailureRollsBackEpisode(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.player.playErr = errBrokenSpeaker

	require.NoError(t, h.svc.Arm(ctx, powerOnly()))
	h.power.SetPowered(false)

	status := h.status(t)
	require.True(t, status.Armed)
	require.False(t, status.AlarmActive)
	require.Nil(t, status.Episode)

	// Volume rolled back to the pre-alarm level.
	require.Equal(t, 0.3, h.volume.current())

	episodes, _ := h.gateway.snapshot()
	require.Empty(t, episodes)
}

// TestService_DisarmWhileAlarming silences the siren and clears the
// episode in one transition.
func TestService_DisarmWhileAlarming(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Arm(ctx, powerOnly()))
	h.power.SetPowered(false)
	require.True(t, h.status(t).AlarmActive)

	require.NoError(t, h.svc.Disarm(ctx))

	status := h.status(t)
	require.False(t, status.Armed)
	require.False(t, status.AlarmActive)
	require.Empty(t, h.player.current())

	_, cleared := h.gateway.snapshot()
	require.Equal(t, 1, cleared)
}

// TestService_RecoverAfterRestart re-arms from the persisted snapshot.
func TestService_RecoverAfterRestart(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.repo.Save(ctx, &repository.State{
		ProtectionActive: true,
		Config:           powerOnly(),
	}))

	require.NoError(t, h.svc.RecoverAfterRestart(ctx))

	status := h.status(t)
	require.True(t, status.Armed)
	require.Len(t, status.Detectors, 1)
}

// TestService_RecoverWithEmptySnapshotDisarms treats a persisted active
// flag without kinds as a disarm.
func TestService_RecoverWithEmptySnapshotDisarms(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.repo.Save(ctx, &repository.State{
		ProtectionActive: true,
	}))

	require.NoError(t, h.svc.RecoverAfterRestart(ctx))
	require.False(t, h.status(t).Armed)

	persisted, err := h.repo.Load(ctx)
	require.NoError(t, err)
	require.False(t, persisted.ProtectionActive)
}

// TestService_RecoverWithoutStateStartsIdle is the first-launch path.
func TestService_RecoverWithoutStateStartsIdle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	require.NoError(t, h.svc.RecoverAfterRestart(context.Background()))
	require.False(t, h.status(t).Armed)
}

// TestService_DegradedDetectorVisibleInStatus arms a kind whose sensor is
// missing and expects it flagged, not failed.
func TestService_DegradedDetectorVisibleInStatus(t *testing.T) {
	t.Parallel()

	monitors := &hardware.Monitors{
		Power:     sim.NewPowerMonitor(true),
		Proximity: sim.NewProximityMonitor(false, false),
	}

	var (
		loop   = runloop.New()
		player = &fakePlayer{}
	)

	siren := output.NewSiren(output.Devices{
		Player:   player,
		Volume:   &fakeVolume{level: 0.3},
		Haptics:  fakeHaptics{},
		Resolver: fakeResolver{},
	})

	svc := NewService(context.Background(), loop, nil, siren, &fakeGateway{}, monitors, nil)

	t.Cleanup(func() {
		svc.Stop(context.Background())
	})

	ctx := context.Background()
	require.NoError(t, svc.Arm(ctx, &guard.Config{
		EnabledKinds: []guard.DetectionKind{
			guard.KindPowerDisconnect,
			guard.KindOrientationPickup,
		},
	}))

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Armed)
	require.Len(t, status.Detectors, 2)

	byKind := make(map[guard.DetectionKind]guard.DetectorStatus, len(status.Detectors))
	for _, d := range status.Detectors {
		byKind[d.Kind] = d
	}

	require.False(t, byKind[guard.KindPowerDisconnect].Degraded)
	require.True(t, byKind[guard.KindOrientationPickup].Degraded)
}

// TestService_RearmReplacesDetectorSet verifies arming twice swaps the
// detector set instead of stacking it.
func TestService_RearmReplacesDetectorSet(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Arm(ctx, &guard.Config{
		EnabledKinds: []guard.DetectionKind{
			guard.KindPowerDisconnect,
			guard.KindLinkDisconnect,
		},
	}))
	require.Len(t, h.status(t).Detectors, 2)

	require.NoError(t, h.svc.Arm(ctx, powerOnly()))

	status := h.status(t)
	require.Len(t, status.Detectors, 1)
	require.Equal(t, guard.KindPowerDisconnect, status.Detectors[0].Kind)
}
