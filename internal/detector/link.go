package detector

import (
	"context"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// LinkDetector debounces the loss of a previously-connected wireless peer.
// A non-empty scope restricts monitoring to the named peers; an empty
// scope monitors whatever connects. Reconnection of any in-scope peer
// before the debounce elapses cancels the pending trigger; transitions of
// unrelated peers are ignored.
type LinkDetector struct {
	*base

	// monitor is the wireless peer source.
	monitor hardware.LinkMonitor
	// delay is the configured debounce window.
	delay time.Duration
	// scope restricts monitoring to these peer IDs, nil means any peer.
	scope map[string]struct{}
	// connected tracks in-scope peers currently believed connected.
	connected map[string]struct{}
}

// NewLink creates the link-disconnect detector.
func NewLink(
	deps Deps,
	delay time.Duration,
	scopedPeerIDs []string,
	onConditionReached func(guard.DetectionKind),
) *LinkDetector {
	var scope map[string]struct{}

	if len(scopedPeerIDs) > 0 {
		scope = make(map[string]struct{}, len(scopedPeerIDs))
		for _, id := range scopedPeerIDs {
			scope[id] = struct{}{}
		}
	}

	return &LinkDetector{
		base:    newBase(guard.KindLinkDisconnect, deps, onConditionReached),
		monitor: deps.Monitors.Link,
		delay:   delay,
		scope:   scope,
	}
}

// StartDetection enumerates currently connected peers and subscribes to transitions.
func (d *LinkDetector) StartDetection(ctx context.Context) {
	if d.started {
		return
	}

	d.started = true
	d.degraded = false
	d.connected = make(map[string]struct{})

	if d.monitor == nil {
		d.degrade(ctx, "no link monitor", nil)

		return
	}

	if !d.deps.permissions().IsSourceUsable(d.kind) {
		d.degrade(ctx, "permission missing", nil)

		return
	}

	peers, err := d.monitor.ConnectedPeers(ctx)
	if err != nil {
		d.degrade(ctx, "peer enumeration failed", err)

		return
	}

	for _, peer := range peers {
		if d.inScope(peer.ID) {
			d.connected[peer.ID] = struct{}{}
		}
	}

	unsubscribe, err := d.monitor.SubscribeLink(func(event hardware.LinkEvent) {
		d.deps.Exec.Post(func() {
			d.handle(event)
		})
	})
	if err != nil {
		d.degrade(ctx, "link subscription failed", err)

		return
	}

	d.unsubscribe = unsubscribe

	logger.DebugKV(ctx, "Link detector armed",
		"debounce", d.delay.String(), "connected_peers", len(d.connected), "scoped", d.scope != nil)
}

// StopDetection detaches from the source. Idempotent.
func (d *LinkDetector) StopDetection(_ context.Context) {
	d.stop()
}

// inScope reports whether the peer is monitored under the current scope.
func (d *LinkDetector) inScope(peerID string) bool {
	if d.scope == nil {
		return true
	}

	_, ok := d.scope[peerID]

	return ok
}

// handle processes one peer transition on the owning context.
func (d *LinkDetector) handle(event hardware.LinkEvent) {
	if !d.started || d.degraded {
		return
	}

	if !d.inScope(event.Peer.ID) {
		return
	}

	if event.Connected {
		d.connected[event.Peer.ID] = struct{}{}
		d.trigger.Cancel()

		return
	}

	// Only the loss of a peer we saw connected starts the countdown.
	if _, wasConnected := d.connected[event.Peer.ID]; wasConnected {
		delete(d.connected, event.Peer.ID)
		d.trigger.Arm(d.delay)
	}
}
