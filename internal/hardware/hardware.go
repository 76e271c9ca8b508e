package hardware

import (
	"context"
	"time"
)

// Peer identifies a paired wireless device.
type Peer struct {
	// ID is the stable peer identifier (address).
	ID string
	// Name is the advertised display name, may be empty.
	Name string
}

// PowerEvent reports an external power transition.
type PowerEvent struct {
	// Connected reports whether external power is present after the transition.
	Connected bool
	// At is when the transition was observed.
	At time.Time
}

// LinkEvent reports a wireless peer connecting or disconnecting.
type LinkEvent struct {
	// Peer is the device that changed state.
	Peer Peer
	// Connected reports whether the peer is connected after the transition.
	Connected bool
	// At is when the transition was observed.
	At time.Time
}

// AudioRouteEvent reports a wired audio route appearing or disappearing.
type AudioRouteEvent struct {
	// WiredPresent reports whether a wired route exists after the transition.
	WiredPresent bool
	// At is when the transition was observed.
	At time.Time
}

// ProximityEvent reports the proximity sensor crossing its near/far threshold.
type ProximityEvent struct {
	// Near reports whether the sensor sees a close object (device face down).
	Near bool
	// At is when the transition was observed.
	At time.Time
}

// UnsubscribeFunc detaches a previously registered handler. Safe to call twice.
type UnsubscribeFunc func()

// PowerMonitor observes the external power source.
// Handlers are invoked on monitor-owned goroutines; subscribers must hand
// events off to their own context before touching shared state.
type PowerMonitor interface {
	// Powered reports whether external power is currently present.
	Powered(ctx context.Context) (bool, error)
	// SubscribePower registers a handler for power transitions.
	SubscribePower(handler func(PowerEvent)) (UnsubscribeFunc, error)
}

// LinkMonitor observes short-range wireless peer connectivity.
type LinkMonitor interface {
	// ConnectedPeers enumerates the peers connected right now.
	ConnectedPeers(ctx context.Context) ([]Peer, error)
	// SubscribeLink registers a handler for peer transitions.
	SubscribeLink(handler func(LinkEvent)) (UnsubscribeFunc, error)
}

// AudioRouteMonitor observes wired audio route presence.
type AudioRouteMonitor interface {
	// WiredRoutePresent enumerates current routes live; callers must not
	// cache the answer because the raw presence flag is unreliable on
	// newer platforms.
	WiredRoutePresent(ctx context.Context) (bool, error)
	// SubscribeAudioRoute registers a handler for route transitions.
	SubscribeAudioRoute(handler func(AudioRouteEvent)) (UnsubscribeFunc, error)
}

// ProximityMonitor observes the near/far proximity sensor.
type ProximityMonitor interface {
	// Available reports whether the device carries a proximity sensor at all.
	Available() bool
	// Near reports the current sensor state.
	Near(ctx context.Context) (bool, error)
	// SubscribeProximity registers a handler for near/far transitions.
	SubscribeProximity(handler func(ProximityEvent)) (UnsubscribeFunc, error)
}

// Monitors bundles the four signal sources wired into the daemon.
// Individual entries may be nil when the backend cannot provide them;
// detectors treat a nil monitor as an unavailable source.
type Monitors struct {
	// Power is the external power source monitor.
	Power PowerMonitor
	// Link is the wireless peer monitor.
	Link LinkMonitor
	// AudioRoute is the wired audio route monitor.
	AudioRoute AudioRouteMonitor
	// Proximity is the near/far sensor monitor.
	Proximity ProximityMonitor
}
