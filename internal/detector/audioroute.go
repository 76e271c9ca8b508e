package detector

import (
	"context"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// AudioRouteDetector debounces the removal of a wired audio route.
// Presence at start is taken from the live enumerate-current-routes API,
// never from a cached flag: the raw legacy boolean is unreliable on the
// newest platform versions.
type AudioRouteDetector struct {
	*base

	// monitor is the audio route source.
	monitor hardware.AudioRouteMonitor
	// delay is the configured debounce window.
	delay time.Duration
	// routePresent tracks whether a wired route is believed present.
	routePresent bool
}

// NewAudioRoute creates the audio-route-removed detector.
func NewAudioRoute(
	deps Deps,
	delay time.Duration,
	onConditionReached func(guard.DetectionKind),
) *AudioRouteDetector {
	return &AudioRouteDetector{
		base:    newBase(guard.KindAudioRouteRemoved, deps, onConditionReached),
		monitor: deps.Monitors.AudioRoute,
		delay:   delay,
	}
}

// StartDetection enumerates current routes and subscribes to transitions.
func (d *AudioRouteDetector) StartDetection(ctx context.Context) {
	if d.started {
		return
	}

	d.started = true
	d.degraded = false

	if d.monitor == nil {
		d.degrade(ctx, "no audio route monitor", nil)

		return
	}

	if !d.deps.permissions().IsSourceUsable(d.kind) {
		d.degrade(ctx, "permission missing", nil)

		return
	}

	present, err := d.monitor.WiredRoutePresent(ctx)
	if err != nil {
		d.degrade(ctx, "route enumeration failed", err)

		return
	}

	d.routePresent = present

	unsubscribe, err := d.monitor.SubscribeAudioRoute(func(event hardware.AudioRouteEvent) {
		d.deps.Exec.Post(func() {
			d.handle(event)
		})
	})
	if err != nil {
		d.degrade(ctx, "audio route subscription failed", err)

		return
	}

	d.unsubscribe = unsubscribe

	logger.DebugKV(ctx, "Audio route detector armed",
		"debounce", d.delay.String(), "route_present", present)
}

// StopDetection detaches from the source. Idempotent.
func (d *AudioRouteDetector) StopDetection(_ context.Context) {
	d.stop()
}

// handle processes one route transition on the owning context.
func (d *AudioRouteDetector) handle(event hardware.AudioRouteEvent) {
	if !d.started || d.degraded {
		return
	}

	if event.WiredPresent {
		d.routePresent = true
		d.trigger.Cancel()

		return
	}

	// Removal only counts when a route was actually present.
	if d.routePresent {
		d.routePresent = false
		d.trigger.Arm(d.delay)
	}
}
