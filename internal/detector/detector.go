package detector

import (
	"context"
	"fmt"

	"github.com/oshokin/pocket-sentinel/internal/debounce"
	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// PermissionOracle reports whether a signal source may be used.
// Missing permission is treated exactly like missing hardware: the
// detector degrades instead of failing.
type PermissionOracle interface {
	IsSourceUsable(kind guard.DetectionKind) bool
}

// AllowAll is a PermissionOracle granting every source.
type AllowAll struct{}

// IsSourceUsable always grants the source.
func (AllowAll) IsSourceUsable(guard.DetectionKind) bool {
	return true
}

// Detector pairs one signal source with one debounced trigger.
//
// StartDetection queries the source's current condition state before
// subscribing to change events; it never returns an error — an unusable
// source degrades the detector to permanently inactive instead.
// StopDetection unsubscribes and cancels any in-flight debounce; it is a
// no-op when not started and safe to call twice. After StopDetection
// returns, the condition callback can no longer be invoked.
//
// Both lifecycle methods must be called from the owning context.
type Detector interface {
	Kind() guard.DetectionKind
	StartDetection(ctx context.Context)
	StopDetection(ctx context.Context)
	Degraded() bool
}

// Deps bundles what every detector variant needs.
type Deps struct {
	// Exec is the owning context every event and fire is serialized onto.
	Exec debounce.Executor
	// Monitors provides the hardware signal sources.
	Monitors *hardware.Monitors
	// Permissions gates source usage. Nil means allow everything.
	Permissions PermissionOracle
}

// permissions returns the configured oracle or the allow-all default.
func (d Deps) permissions() PermissionOracle {
	if d.Permissions == nil {
		return AllowAll{}
	}

	return d.Permissions
}

// New builds the detector for the given kind, wired to the shared
// condition callback. The configuration snapshot supplies the per-kind
// debounce window and the wireless peer scope.
func New(
	kind guard.DetectionKind,
	deps Deps,
	cfg *guard.Config,
	onConditionReached func(guard.DetectionKind),
) (Detector, error) {
	switch kind {
	case guard.KindPowerDisconnect:
		return NewPower(deps, onConditionReached), nil
	case guard.KindLinkDisconnect:
		return NewLink(deps, cfg.DebounceFor(kind), cfg.ScopedPeerIDs, onConditionReached), nil
	case guard.KindAudioRouteRemoved:
		return NewAudioRoute(deps, cfg.DebounceFor(kind), onConditionReached), nil
	case guard.KindOrientationPickup:
		return NewProximity(deps, cfg.DebounceFor(kind), onConditionReached), nil
	default:
		return nil, fmt.Errorf("%q: %w", kind, guard.ErrUnknownKind)
	}
}

// base carries the state shared by all detector variants. Its fields are
// only ever touched from the owning context, so no lock is needed.
type base struct {
	// kind is the detection kind this detector serves.
	kind guard.DetectionKind
	// deps holds the executor, monitors and permission oracle.
	deps Deps
	// onConditionReached is the orchestrator callback.
	onConditionReached func(guard.DetectionKind)
	// trigger is the debounced guard between raw signal and callback.
	trigger *debounce.Trigger
	// started reports the detector is between Start and Stop.
	started bool
	// degraded marks a source that could not be subscribed; the detector
	// stays "running" but never fires.
	degraded bool
	// unsubscribe detaches the source handler, nil when not subscribed.
	unsubscribe hardware.UnsubscribeFunc
}

// newBase wires the trigger so an elapsed countdown invokes the
// orchestrator callback only while the detector is still running.
func newBase(kind guard.DetectionKind, deps Deps, onConditionReached func(guard.DetectionKind)) *base {
	b := &base{
		kind:               kind,
		deps:               deps,
		onConditionReached: onConditionReached,
	}

	b.trigger = debounce.NewTrigger(deps.Exec, func() {
		if b.started && !b.degraded {
			b.onConditionReached(b.kind)
		}
	})

	return b
}

// Kind returns the detection kind this detector serves.
func (b *base) Kind() guard.DetectionKind {
	return b.kind
}

// Degraded reports whether the source could not be subscribed.
func (b *base) Degraded() bool {
	return b.degraded
}

// degrade marks the detector permanently inactive and logs why.
// Protection continues with the remaining detectors.
func (b *base) degrade(ctx context.Context, reason string, err error) {
	if err == nil {
		err = guard.ErrSourceUnavailable
	}

	b.degraded = true

	logger.WarnKV(ctx, "Detector degraded to inactive",
		"kind", b.kind, "reason", reason, "error", err)
}

// stop cancels the debounce and detaches from the source. Idempotent.
func (b *base) stop() {
	if !b.started {
		return
	}

	b.started = false
	b.trigger.Cancel()

	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}
