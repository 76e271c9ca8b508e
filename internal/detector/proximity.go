package detector

import (
	"context"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// ProximityDetector debounces the device being picked up: the sensor
// transitioning from "near" (face down on a surface) to "far". Placing the
// device back down cancels the pending trigger. Devices without a
// proximity sensor arm a permanently inactive detector that never fires.
type ProximityDetector struct {
	*base

	// monitor is the near/far sensor source.
	monitor hardware.ProximityMonitor
	// delay is the configured debounce window.
	delay time.Duration
	// near tracks whether the sensor currently sees a close object.
	near bool
}

// NewProximity creates the orientation-pickup detector.
func NewProximity(
	deps Deps,
	delay time.Duration,
	onConditionReached func(guard.DetectionKind),
) *ProximityDetector {
	return &ProximityDetector{
		base:    newBase(guard.KindOrientationPickup, deps, onConditionReached),
		monitor: deps.Monitors.Proximity,
		delay:   delay,
	}
}

// StartDetection seeds the sensor state and subscribes to transitions.
func (d *ProximityDetector) StartDetection(ctx context.Context) {
	if d.started {
		return
	}

	d.started = true
	d.degraded = false

	if d.monitor == nil || !d.monitor.Available() {
		d.degrade(ctx, "no proximity sensor", nil)

		return
	}

	if !d.deps.permissions().IsSourceUsable(d.kind) {
		d.degrade(ctx, "permission missing", nil)

		return
	}

	near, err := d.monitor.Near(ctx)
	if err != nil {
		d.degrade(ctx, "proximity state query failed", err)

		return
	}

	d.near = near

	unsubscribe, err := d.monitor.SubscribeProximity(func(event hardware.ProximityEvent) {
		d.deps.Exec.Post(func() {
			d.handle(event)
		})
	})
	if err != nil {
		d.degrade(ctx, "proximity subscription failed", err)

		return
	}

	d.unsubscribe = unsubscribe

	logger.DebugKV(ctx, "Proximity detector armed",
		"debounce", d.delay.String(), "near", near)
}

// StopDetection detaches from the source. Idempotent.
func (d *ProximityDetector) StopDetection(_ context.Context) {
	d.stop()
}

// handle processes one near/far transition on the owning context.
func (d *ProximityDetector) handle(event hardware.ProximityEvent) {
	if !d.started || d.degraded {
		return
	}

	if event.Near {
		// Placed back down: any pending pickup is a false positive.
		d.near = true
		d.trigger.Cancel()

		return
	}

	// Pickup only counts as a near-to-far transition.
	if d.near {
		d.near = false
		d.trigger.Arm(d.delay)
	}
}
