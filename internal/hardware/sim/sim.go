package sim

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/hardware"
)

// handlerSet tracks registered handlers behind integer tokens so each
// subscription can be detached independently.
type handlerSet[E any] struct {
	// mu guards the handler table.
	mu sync.Mutex
	// next is the token handed to the next subscriber.
	next int
	// handlers maps tokens to registered callbacks.
	handlers map[int]func(E)
}

// add registers a handler and returns its detach function.
func (s *handlerSet[E]) add(handler func(E)) hardware.UnsubscribeFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handlers == nil {
		s.handlers = make(map[int]func(E))
	}

	token := s.next
	s.next++
	s.handlers[token] = handler

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.handlers, token)
	}
}

// emit delivers the event to every registered handler.
func (s *handlerSet[E]) emit(event E) {
	s.mu.Lock()
	snapshot := make([]func(E), 0, len(s.handlers))

	for _, handler := range s.handlers {
		snapshot = append(snapshot, handler)
	}
	s.mu.Unlock()

	for _, handler := range snapshot {
		handler(event)
	}
}

// PowerMonitor is a scriptable in-memory power source.
type PowerMonitor struct {
	// SubscribeErr, when set, makes every subscription attempt fail.
	SubscribeErr error

	// mu guards powered.
	mu sync.Mutex
	// powered is the current external power state.
	powered bool

	handlers handlerSet[hardware.PowerEvent]
}

// NewPowerMonitor creates a power monitor with the given initial state.
func NewPowerMonitor(powered bool) *PowerMonitor {
	return &PowerMonitor{powered: powered}
}

// Powered reports the scripted external power state.
func (m *PowerMonitor) Powered(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.powered, nil
}

// SubscribePower registers a handler for scripted power transitions.
func (m *PowerMonitor) SubscribePower(handler func(hardware.PowerEvent)) (hardware.UnsubscribeFunc, error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}

	return m.handlers.add(handler), nil
}

// SetPowered scripts a power transition and notifies subscribers on change.
func (m *PowerMonitor) SetPowered(powered bool) {
	m.mu.Lock()
	changed := m.powered != powered
	m.powered = powered
	m.mu.Unlock()

	if changed {
		m.handlers.emit(hardware.PowerEvent{Connected: powered, At: time.Now()})
	}
}

// LinkMonitor is a scriptable in-memory wireless peer table.
type LinkMonitor struct {
	// SubscribeErr, when set, makes every subscription attempt fail.
	SubscribeErr error

	// mu guards peers.
	mu sync.Mutex
	// peers holds the currently connected peers keyed by ID.
	peers map[string]hardware.Peer

	handlers handlerSet[hardware.LinkEvent]
}

// NewLinkMonitor creates a link monitor with the given connected peers.
func NewLinkMonitor(peers ...hardware.Peer) *LinkMonitor {
	m := &LinkMonitor{peers: make(map[string]hardware.Peer, len(peers))}
	for _, peer := range peers {
		m.peers[peer.ID] = peer
	}

	return m
}

// ConnectedPeers lists the currently connected peers.
func (m *LinkMonitor) ConnectedPeers(_ context.Context) ([]hardware.Peer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	connected := make([]hardware.Peer, 0, len(m.peers))
	for _, peer := range m.peers {
		connected = append(connected, peer)
	}

	return connected, nil
}

// SubscribeLink registers a handler for scripted peer transitions.
func (m *LinkMonitor) SubscribeLink(handler func(hardware.LinkEvent)) (hardware.UnsubscribeFunc, error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}

	return m.handlers.add(handler), nil
}

// Connect scripts a peer connection.
func (m *LinkMonitor) Connect(peer hardware.Peer) {
	m.mu.Lock()
	m.peers[peer.ID] = peer
	m.mu.Unlock()

	m.handlers.emit(hardware.LinkEvent{Peer: peer, Connected: true, At: time.Now()})
}

// Disconnect scripts a peer disconnection.
func (m *LinkMonitor) Disconnect(peer hardware.Peer) {
	m.mu.Lock()
	delete(m.peers, peer.ID)
	m.mu.Unlock()

	m.handlers.emit(hardware.LinkEvent{Peer: peer, Connected: false, At: time.Now()})
}

// AudioRouteMonitor is a scriptable in-memory wired route flag.
type AudioRouteMonitor struct {
	// SubscribeErr, when set, makes every subscription attempt fail.
	SubscribeErr error

	// mu guards present.
	mu sync.Mutex
	// present is the current wired route presence.
	present bool

	handlers handlerSet[hardware.AudioRouteEvent]
}

// NewAudioRouteMonitor creates an audio route monitor with the given initial state.
func NewAudioRouteMonitor(present bool) *AudioRouteMonitor {
	return &AudioRouteMonitor{present: present}
}

// WiredRoutePresent reports the scripted wired route presence.
func (m *AudioRouteMonitor) WiredRoutePresent(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.present, nil
}

// SubscribeAudioRoute registers a handler for scripted route transitions.
func (m *AudioRouteMonitor) SubscribeAudioRoute(
	handler func(hardware.AudioRouteEvent),
) (hardware.UnsubscribeFunc, error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}

	return m.handlers.add(handler), nil
}

// SetWiredRoute scripts a route transition and notifies subscribers on change.
func (m *AudioRouteMonitor) SetWiredRoute(present bool) {
	m.mu.Lock()
	changed := m.present != present
	m.present = present
	m.mu.Unlock()

	if changed {
		m.handlers.emit(hardware.AudioRouteEvent{WiredPresent: present, At: time.Now()})
	}
}

// ProximityMonitor is a scriptable in-memory near/far sensor.
type ProximityMonitor struct {
	// SubscribeErr, when set, makes every subscription attempt fail.
	SubscribeErr error

	// available reports whether the scripted device carries a sensor.
	available bool

	// mu guards near.
	mu sync.Mutex
	// near is the current sensor state.
	near bool

	handlers handlerSet[hardware.ProximityEvent]
}

// NewProximityMonitor creates a proximity monitor.
// When available is false the monitor mimics a device without a sensor.
func NewProximityMonitor(available, near bool) *ProximityMonitor {
	return &ProximityMonitor{available: available, near: near}
}

// Available reports whether the scripted sensor exists.
func (m *ProximityMonitor) Available() bool {
	return m.available
}

// Near reports the scripted sensor state.
func (m *ProximityMonitor) Near(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.near, nil
}

// SubscribeProximity registers a handler for scripted near/far transitions.
func (m *ProximityMonitor) SubscribeProximity(
	handler func(hardware.ProximityEvent),
) (hardware.UnsubscribeFunc, error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}

	return m.handlers.add(handler), nil
}

// SetNear scripts a near/far transition and notifies subscribers on change.
func (m *ProximityMonitor) SetNear(near bool) {
	m.mu.Lock()
	changed := m.near != near
	m.near = near
	m.mu.Unlock()

	if changed {
		m.handlers.emit(hardware.ProximityEvent{Near: near, At: time.Now()})
	}
}

// NewMonitors bundles a full set of simulated sources in a typical starting
// state: powered, one paired peer connected, headphones in, face down.
func NewMonitors() (*hardware.Monitors, *PowerMonitor, *LinkMonitor, *AudioRouteMonitor, *ProximityMonitor) {
	var (
		power     = NewPowerMonitor(true)
		link      = NewLinkMonitor(hardware.Peer{ID: "AA:BB:CC:DD:EE:FF", Name: "sim-peer"})
		audio     = NewAudioRouteMonitor(true)
		proximity = NewProximityMonitor(true, true)
	)

	monitors := &hardware.Monitors{
		Power:      power,
		Link:       link,
		AudioRoute: audio,
		Proximity:  proximity,
	}

	return monitors, power, link, audio, proximity
}
