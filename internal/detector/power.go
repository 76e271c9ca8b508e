package detector

import (
	"context"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// PowerDetector fires immediately (no debounce) when external power that
// was present is removed. "Was present" is tracked from the source's own
// connect events after a single seed query, so a device armed while
// already unplugged does not fire until power is seen again.
type PowerDetector struct {
	*base

	// monitor is the external power source.
	monitor hardware.PowerMonitor
	// wasPowered tracks whether power has been observed present.
	wasPowered bool
}

// NewPower creates the power-disconnect detector.
func NewPower(deps Deps, onConditionReached func(guard.DetectionKind)) *PowerDetector {
	return &PowerDetector{
		base:    newBase(guard.KindPowerDisconnect, deps, onConditionReached),
		monitor: deps.Monitors.Power,
	}
}

// StartDetection seeds the power state and subscribes to transitions.
func (d *PowerDetector) StartDetection(ctx context.Context) {
	if d.started {
		return
	}

	d.started = true
	d.degraded = false

	if d.monitor == nil {
		d.degrade(ctx, "no power monitor", nil)

		return
	}

	if !d.deps.permissions().IsSourceUsable(d.kind) {
		d.degrade(ctx, "permission missing", nil)

		return
	}

	powered, err := d.monitor.Powered(ctx)
	if err != nil {
		d.degrade(ctx, "power state query failed", err)

		return
	}

	d.wasPowered = powered

	unsubscribe, err := d.monitor.SubscribePower(func(event hardware.PowerEvent) {
		d.deps.Exec.Post(func() {
			d.handle(event)
		})
	})
	if err != nil {
		d.degrade(ctx, "power subscription failed", err)

		return
	}

	d.unsubscribe = unsubscribe

	logger.DebugKV(ctx, "Power detector armed", "was_powered", powered)
}

// StopDetection detaches from the source. Idempotent.
func (d *PowerDetector) StopDetection(_ context.Context) {
	d.stop()
}

// handle processes one power transition on the owning context.
func (d *PowerDetector) handle(event hardware.PowerEvent) {
	if !d.started || d.degraded {
		return
	}

	if event.Connected {
		d.wasPowered = true

		return
	}

	// Disconnect only counts when power was actually seen present.
	if d.wasPowered {
		d.wasPowered = false
		d.trigger.Arm(0)
	}
}
