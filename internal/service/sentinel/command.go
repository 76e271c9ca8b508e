package sentinel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/pocket-sentinel/internal/config"
	"github.com/oshokin/pocket-sentinel/internal/gateway/mqtt"
	"github.com/oshokin/pocket-sentinel/internal/hardware"
	"github.com/oshokin/pocket-sentinel/internal/hardware/sim"
	"github.com/oshokin/pocket-sentinel/internal/hardware/sysfs"
	"github.com/oshokin/pocket-sentinel/internal/logger"
	"github.com/oshokin/pocket-sentinel/internal/output"
	"github.com/oshokin/pocket-sentinel/internal/output/console"
	repository "github.com/oshokin/pocket-sentinel/internal/repository/settings"
	"github.com/oshokin/pocket-sentinel/internal/runloop"
)

// daemonProcessName is the executable name checked for duplicate instances.
const daemonProcessName = "pocket-sentinel"

// Options controls the daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StateFile provides an optional override for the guard state path.
	StateFile string
	// Simulate forces simulated hardware monitors regardless of config.
	Simulate bool
}

// ErrAlreadyRunning indicates another daemon instance owns the hardware.
var ErrAlreadyRunning = errors.New("another pocket-sentinel instance is already running")

// Run starts the daemon and blocks until the context is canceled.
// It loads configuration, connects to the broker, recovers persisted
// protection and then serves control commands.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, daemonProcessName)

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Use StateFile from config unless overridden by command line option.
	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	if opts.Simulate {
		settings.HardwareMode = config.HardwareModeSim
	}

	// Two daemons would fight over volume and persisted state.
	if err = ensureSingleInstance(); err != nil {
		return err
	}

	client, err := mqtt.Dial(ctx, mqtt.Options{
		BrokerAddress: settings.BrokerAddress,
		ClientID:      settings.ClientID,
		TopicPrefix:   settings.TopicPrefix,
		Timeout:       settings.Timeout,
	})
	if err != nil {
		return fmt.Errorf("connect control channel: %w", err)
	}
	defer client.Close()

	devices := console.NewDevices()
	if settings.DefaultSound != "" {
		devices.Resolver = output.NewFileResolver(settings.DefaultSound)
	}

	var (
		loop     = runloop.New()
		repo     = repository.NewFileRepository(stateFile)
		siren    = output.NewSiren(devices)
		monitors = buildMonitors(ctx, settings)
		gateway  = mqtt.NewGateway(client)
		service  = NewService(ctx, loop, repo, siren, gateway, monitors, nil)
	)

	if err = service.RecoverAfterRestart(ctx); err != nil {
		// The daemon still guards; only the previous session is lost.
		logger.ErrorKV(ctx, "Failed to recover persisted protection", "error", err)
	}

	if err = client.SubscribeCommands(ctx, func(cmd mqtt.Command) {
		dispatchCommand(ctx, service, repo, cmd)
	}); err != nil {
		return fmt.Errorf("subscribe control channel: %w", err)
	}

	if status, statusErr := service.Status(ctx); statusErr == nil {
		gateway.ShowStatus(ctx, status)
	}

	logger.InfoKV(ctx, "Pocket sentinel running",
		"broker", settings.BrokerAddress,
		"hardware_mode", settings.HardwareMode,
		"state_file", stateFile)

	<-ctx.Done()
	logger.Info(ctx, "Shutting down")

	service.Stop(context.WithoutCancel(ctx))
	logger.Info(ctx, "Pocket sentinel stopped")

	return nil
}

// dispatchCommand routes one control command to the orchestrator.
// Command failures are logged, not fatal: the control channel stays up.
func dispatchCommand(ctx context.Context, service *Service, repo repository.Repository, cmd mqtt.Command) {
	logger.InfoKV(ctx, "Control command received", "action", cmd.Action)

	switch cmd.Action {
	case mqtt.ActionArm:
		cfg := cmd.Config
		if cfg == nil {
			// Re-arm with the last persisted snapshot when none is attached.
			state, err := repo.Load(ctx)
			if err != nil || state.Config == nil {
				logger.WarnKV(ctx, "Arm command without configuration and no persisted snapshot",
					"error", err)

				return
			}

			cfg = state.Config
		}

		if err := service.Arm(ctx, cfg); err != nil {
			logger.ErrorKV(ctx, "Arm failed", "error", err)
		}
	case mqtt.ActionDisarm:
		if err := service.Disarm(ctx); err != nil {
			logger.ErrorKV(ctx, "Disarm failed", "error", err)
		}
	case mqtt.ActionDismiss:
		if err := service.Dismiss(ctx); err != nil {
			logger.ErrorKV(ctx, "Dismiss failed", "error", err)
		}
	default:
		logger.WarnKV(ctx, "Unknown control action ignored", "action", cmd.Action)
	}
}

// buildMonitors selects the hardware backends for the configured mode.
// In sysfs mode only the power source is real; the remaining monitors are
// absent and their detectors arm degraded.
func buildMonitors(ctx context.Context, settings *config.Config) *hardware.Monitors {
	if settings.HardwareMode == config.HardwareModeSim {
		logger.Info(ctx, "Using simulated hardware monitors")

		monitors, _, _, _, _ := sim.NewMonitors()

		return monitors
	}

	return &hardware.Monitors{
		Power: sysfs.NewPowerMonitor(settings.PowerSupplyPath),
	}
}

// ensureSingleInstance scans the process table for another daemon.
func ensureSingleInstance() error {
	processes, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	ownPID := os.Getpid()

	for _, process := range processes {
		if process.Pid() == ownPID {
			continue
		}

		name := strings.TrimSuffix(process.Executable(), filepath.Ext(process.Executable()))
		if name == daemonProcessName {
			return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, process.Pid())
		}
	}

	return nil
}
