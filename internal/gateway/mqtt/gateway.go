package mqtt

import (
	"context"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// Episode event types published on the episode topic.
const (
	// EpisodeStarted announces a new alarm episode.
	EpisodeStarted = "started"
	// EpisodeCleared retracts the previously announced episode.
	EpisodeCleared = "cleared"
)

// EpisodeEvent is the JSON document published on the episode topic.
type EpisodeEvent struct {
	// Type is EpisodeStarted or EpisodeCleared.
	Type string `json:"type"`
	// Episode is the episode payload, set for EpisodeStarted only.
	Episode *guard.Episode `json:"episode,omitempty"`
}

// wire is the client surface the gateway publishes through.
type wire interface {
	PublishJSON(leaf string, retained bool, value any) error
}

// Gateway publishes orchestrator state to the broker: episode events on
// the episode topic and a retained status snapshot on the status topic.
// All methods are fire-and-forget, publish failures are logged and dropped.
type Gateway struct {
	// conn is the broker connection.
	conn wire
}

// NewGateway wraps a connected client into a presentation gateway.
func NewGateway(client *Client) *Gateway {
	return &Gateway{
		conn: client,
	}
}

// ShowEpisode publishes the episode start event.
func (g *Gateway) ShowEpisode(ctx context.Context, episode *guard.Episode) {
	event := &EpisodeEvent{
		Type:    EpisodeStarted,
		Episode: episode,
	}

	if err := g.conn.PublishJSON(topicEpisode, false, event); err != nil {
		logger.WarnKV(ctx, "Failed to publish episode event", "error", err)
	}
}

// ClearEpisode publishes the episode cleared event.
func (g *Gateway) ClearEpisode(ctx context.Context) {
	event := &EpisodeEvent{
		Type: EpisodeCleared,
	}

	if err := g.conn.PublishJSON(topicEpisode, false, event); err != nil {
		logger.WarnKV(ctx, "Failed to publish episode event", "error", err)
	}
}

// ShowStatus publishes the status snapshot, retained so late subscribers
// always see the current state.
func (g *Gateway) ShowStatus(ctx context.Context, status *guard.Status) {
	if err := g.conn.PublishJSON(topicStatus, true, status); err != nil {
		logger.WarnKV(ctx, "Failed to publish status snapshot", "error", err)
	}
}
