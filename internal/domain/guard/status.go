package guard

import "time"

// DetectorStatus describes one detector inside a status snapshot.
type DetectorStatus struct {
	// Kind is the detection kind the detector serves.
	Kind DetectionKind `json:"kind"`
	// Label is the fixed display label for the kind.
	Label string `json:"label"`
	// Armed reports whether the detector is running.
	Armed bool `json:"armed"`
	// Degraded reports a detector whose source could not be subscribed;
	// it is running but will never fire.
	Degraded bool `json:"degraded"`
}

// Status is a point-in-time snapshot of the orchestrator, published to the
// presentation layer so degraded arming is always visible.
type Status struct {
	// Timestamp is when the snapshot was taken.
	Timestamp time.Time `json:"timestamp"`
	// Armed reports whether at least one detector is running.
	Armed bool `json:"armed"`
	// AlarmActive reports whether an episode currently exists.
	AlarmActive bool `json:"alarm_active"`
	// Detectors lists per-kind detector state in arm order.
	Detectors []DetectorStatus `json:"detectors,omitempty"`
	// Episode is the active episode, nil unless AlarmActive.
	Episode *Episode `json:"episode,omitempty"`
}

// Clone returns a deep copy of the status snapshot.
func (s *Status) Clone() *Status {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.Detectors = append([]DetectorStatus(nil), s.Detectors...)
	cloned.Episode = s.Episode.Clone()

	return &cloned
}
