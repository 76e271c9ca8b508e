package guard

// DetectionKind identifies why an alarm episode started.
// The set is closed: exactly four signal sources exist.
type DetectionKind string

const (
	// KindPowerDisconnect fires when external power that was present is removed.
	KindPowerDisconnect DetectionKind = "power_disconnect"
	// KindLinkDisconnect fires when a previously-connected wireless peer drops.
	KindLinkDisconnect DetectionKind = "link_disconnect"
	// KindAudioRouteRemoved fires when a wired audio route that was present is removed.
	KindAudioRouteRemoved DetectionKind = "audio_route_removed"
	// KindOrientationPickup fires when the device is picked up from a face-down rest.
	KindOrientationPickup DetectionKind = "orientation_pickup"
)

// kindLabels maps each kind to its fixed display label.
//
//nolint:gochecknoglobals // Closed lookup table for a closed enumeration.
var kindLabels = map[DetectionKind]string{
	KindPowerDisconnect:   "Charger disconnected",
	KindLinkDisconnect:    "Wireless link lost",
	KindAudioRouteRemoved: "Headphones removed",
	KindOrientationPickup: "Device picked up",
}

// AllKinds returns every detection kind in a stable order.
func AllKinds() []DetectionKind {
	return []DetectionKind{
		KindPowerDisconnect,
		KindLinkDisconnect,
		KindAudioRouteRemoved,
		KindOrientationPickup,
	}
}

// Valid reports whether the kind is one of the four known detection kinds.
func (k DetectionKind) Valid() bool {
	_, ok := kindLabels[k]

	return ok
}

// Label returns the fixed human-readable label for the kind.
func (k DetectionKind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}

	return string(k)
}
