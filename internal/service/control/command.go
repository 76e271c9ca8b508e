package control

import (
	"context"
	"fmt"
	"os"

	"github.com/oshokin/pocket-sentinel/internal/config"
	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/gateway/mqtt"
	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// Options controls one command sent to a running daemon.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Action is the control action to send.
	Action string
	// GuardConfig is the configuration snapshot for an arm action.
	// Nil means "re-arm with the daemon's last persisted snapshot".
	GuardConfig *guard.Config
}

// Send publishes one control command to the daemon's command topic.
func Send(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sentinel-control")

	client, err := dial(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer client.Close()

	cmd := mqtt.Command{
		Action: opts.Action,
		Config: opts.GuardConfig,
	}

	if err = client.SendCommand(ctx, cmd); err != nil {
		return fmt.Errorf("send %s command: %w", opts.Action, err)
	}

	logger.InfoKV(ctx, "Command sent", "action", opts.Action)

	return nil
}

// FetchStatus retrieves the retained status snapshot from the broker.
func FetchStatus(ctx context.Context, configPath string) (*guard.Status, error) {
	ctx = logger.WithName(ctx, "sentinel-control")

	client, err := dial(ctx, configPath)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	status, err := client.FetchStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}

	return status, nil
}

// dial connects to the broker with a client ID distinct from the daemon's,
// so the control connection never kicks the daemon off the broker.
func dial(ctx context.Context, configPath string) (*mqtt.Client, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	client, err := mqtt.Dial(ctx, mqtt.Options{
		BrokerAddress: settings.BrokerAddress,
		ClientID:      fmt.Sprintf("%s-ctl-%d", settings.ClientID, os.Getpid()),
		TopicPrefix:   settings.TopicPrefix,
		Timeout:       settings.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect control channel: %w", err)
	}

	return client, nil
}
