package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// Control actions accepted on the commands topic.
const (
	// ActionArm starts protection with the attached configuration.
	ActionArm = "arm"
	// ActionDisarm stops protection entirely.
	ActionDisarm = "disarm"
	// ActionDismiss ends the active alarm episode, protection stays on.
	ActionDismiss = "dismiss"
)

// Command is the JSON document accepted on the commands topic.
type Command struct {
	// Action is one of the control actions.
	Action string `json:"action"`
	// Config is the configuration snapshot for ActionArm, ignored otherwise.
	Config *guard.Config `json:"config,omitempty"`
}

// CommandHandler consumes one decoded control command.
type CommandHandler func(cmd Command)

// SubscribeCommands registers a handler for control commands. Payloads
// that do not decode are logged and dropped.
func (c *Client) SubscribeCommands(ctx context.Context, handler CommandHandler) error {
	return c.subscribe(topicCommands, func(payload []byte) {
		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			logger.WarnKV(ctx, "Dropping malformed control command", "error", err)

			return
		}

		handler(cmd)
	})
}

// SendCommand publishes a control command, used by the CLI subcommands
// to steer a running daemon.
func (c *Client) SendCommand(_ context.Context, cmd Command) error {
	switch cmd.Action {
	case ActionArm, ActionDisarm, ActionDismiss:
	default:
		return fmt.Errorf("send command: unknown action %q", cmd.Action)
	}

	return c.PublishJSON(topicCommands, false, cmd)
}

// FetchStatus waits for the retained status snapshot and returns it.
func (c *Client) FetchStatus(ctx context.Context) (*guard.Status, error) {
	received := make(chan *guard.Status, 1)

	err := c.subscribe(topicStatus, func(payload []byte) {
		var status guard.Status
		if err := json.Unmarshal(payload, &status); err != nil {
			logger.WarnKV(ctx, "Dropping malformed status snapshot", "error", err)

			return
		}

		select {
		case received <- &status:
		default:
		}
	})
	if err != nil {
		return nil, err
	}

	defer func() {
		if err = c.unsubscribe(topicStatus); err != nil {
			logger.WarnKV(ctx, "Failed to unsubscribe from status topic", "error", err)
		}
	}()

	select {
	case status := <-received:
		return status, nil
	case <-time.After(c.timeout):
		return nil, fmt.Errorf("fetch status: %w", context.DeadlineExceeded)
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch status: %w", ctx.Err())
	}
}
