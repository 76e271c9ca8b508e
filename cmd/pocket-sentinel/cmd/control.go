package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/pocket-sentinel/internal/config"
	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
	"github.com/oshokin/pocket-sentinel/internal/gateway/mqtt"
	"github.com/oshokin/pocket-sentinel/internal/service/control"
)

var (
	// armKinds lists the detection kinds to enable.
	armKinds []string
	// armPeers limits link detection to these peer IDs.
	armPeers []string
	// armSound references a custom alarm sound.
	armSound string
	// armLinkDebounce is the wireless link debounce window.
	armLinkDebounce time.Duration
	// armAudioDebounce is the audio route debounce window.
	armAudioDebounce time.Duration
	// armOrientationDebounce is the proximity debounce window.
	armOrientationDebounce time.Duration

	// armCmd starts protection on a running daemon.
	armCmd = &cobra.Command{
		Use:   "arm",
		Short: "Arm protection on the running daemon.",
		Long: `Sends an arm command with the selected detection kinds to the daemon.

Without --kind flags the daemon re-arms with its last persisted configuration.
Available kinds: power_disconnect, link_disconnect, audio_route_removed,
orientation_pickup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildGuardConfig()
			if err != nil {
				return err
			}

			return control.Send(cmd.Context(), &control.Options{
				ConfigPath:  configPath,
				Action:      mqtt.ActionArm,
				GuardConfig: cfg,
			})
		},
	}

	// disarmCmd stops protection entirely.
	disarmCmd = &cobra.Command{
		Use:   "disarm",
		Short: "Disarm protection on the running daemon.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return control.Send(cmd.Context(), &control.Options{
				ConfigPath: configPath,
				Action:     mqtt.ActionDisarm,
			})
		},
	}

	// dismissCmd ends the active alarm, protection stays on.
	dismissCmd = &cobra.Command{
		Use:   "dismiss",
		Short: "Dismiss the active alarm, keeping protection armed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return control.Send(cmd.Context(), &control.Options{
				ConfigPath: configPath,
				Action:     mqtt.ActionDismiss,
			})
		},
	}

	// statusCmd prints the daemon's retained status snapshot.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the daemon's current guard status as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := control.FetchStatus(cmd.Context(), configPath)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return fmt.Errorf("encode status: %w", err)
			}

			cmd.Println(string(encoded))

			return nil
		},
	}
)

// buildGuardConfig assembles the arming snapshot from the command flags.
// Returns nil when no kinds were selected, letting the daemon re-arm with
// its persisted snapshot.
func buildGuardConfig() (*guard.Config, error) {
	if len(armKinds) == 0 {
		return nil, nil
	}

	kinds := make([]guard.DetectionKind, 0, len(armKinds))

	for _, raw := range armKinds {
		kind := guard.DetectionKind(raw)
		if !kind.Valid() {
			return nil, fmt.Errorf("%q: %w", raw, guard.ErrUnknownKind)
		}

		kinds = append(kinds, kind)
	}

	return &guard.Config{
		EnabledKinds:        kinds,
		LinkDebounce:        armLinkDebounce,
		AudioDebounce:       armAudioDebounce,
		OrientationDebounce: armOrientationDebounce,
		ScopedPeerIDs:       armPeers,
		SoundRef:            armSound,
	}, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	armCmd.Flags().StringArrayVarP(&armKinds, "kind", "k", nil, "detection kind to enable (repeatable)")
	armCmd.Flags().StringArrayVarP(&armPeers, "peer", "p", nil, "peer ID to scope link detection to (repeatable)")
	armCmd.Flags().StringVar(&armSound, "sound", "", "custom alarm sound reference")
	armCmd.Flags().DurationVar(&armLinkDebounce, "link-debounce", 0, "wireless link debounce window")
	armCmd.Flags().DurationVar(&armAudioDebounce, "audio-debounce", 0, "audio route debounce window")
	armCmd.Flags().
		DurationVar(&armOrientationDebounce, "orientation-debounce", 0, "proximity debounce window")

	for _, c := range []*cobra.Command{armCmd, disarmCmd, dismissCmd, statusCmd} {
		c.Flags().
			StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	}
}
