package guard

import (
	"time"

	"github.com/google/uuid"
)

// Episode is one alarm activation, from creation to dismissal.
// At most one instance exists process-wide at any time; its existence is
// the sole source of truth for "alarm active".
type Episode struct {
	// ID correlates the episode across logs and published events.
	ID string `json:"id"`
	// Kind identifies the detector that started the episode.
	Kind DetectionKind `json:"kind"`
	// StartedAt is when the orchestrator accepted the detector fire.
	StartedAt time.Time `json:"started_at"`
}

// NewEpisode creates an episode for the given kind, stamped with the current time.
func NewEpisode(kind DetectionKind) *Episode {
	return &Episode{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
}

// Clone returns a copy of the episode to avoid leaking internal references.
func (e *Episode) Clone() *Episode {
	if e == nil {
		return nil
	}

	cloned := *e

	return &cloned
}
