package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/pocket-sentinel/internal/logger"
)

// Config holds process settings shared by the sentinel daemon and its control subcommands.
type Config struct {
	// BrokerAddress is the MQTT broker URI used for status publishing and control commands.
	BrokerAddress string `yaml:"broker_addr"`
	// ClientID is the MQTT client identifier prefix for this device.
	ClientID string `yaml:"client_id"`
	// TopicPrefix is the root of the MQTT topic tree (status, episodes, commands).
	TopicPrefix string `yaml:"topic_prefix"`
	// StateFile is the path to the YAML file storing the guard configuration
	// snapshot and the protection-active flag.
	StateFile string `yaml:"state_file"`
	// HardwareMode selects the signal-source backend: "sysfs" or "sim".
	HardwareMode string `yaml:"hardware_mode"`
	// PowerSupplyPath is the sysfs directory scanned for external power state.
	PowerSupplyPath string `yaml:"power_supply_path"`
	// DefaultSound is an optional path to the system default alarm sound.
	// Empty keeps the built-in chime.
	DefaultSound string `yaml:"default_sound,omitempty"`
	// LogLevel is the minimum log level (debug, info, warn, error, fatal).
	LogLevel string `yaml:"log_level"`
	// Timeout is the duration for broker operations and control round trips.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "pocket-sentinel-settings.yaml"

	// DefaultStateFilename is the default filename for persisted guard state.
	DefaultStateFilename = "pocket-sentinel-state.yaml"

	// DefaultBrokerAddress is the default MQTT broker URI.
	DefaultBrokerAddress = "tcp://127.0.0.1:1883"

	// DefaultTopicPrefix is the default root of the MQTT topic tree.
	DefaultTopicPrefix = "pocket-sentinel"

	// DefaultTimeout is the default duration for broker operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// HardwareModeSysfs reads real signals from the Linux sysfs tree.
	HardwareModeSysfs = "sysfs"
	// HardwareModeSim wires scriptable in-memory signal sources.
	HardwareModeSim = "sim"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBrokerRequired is returned when the broker address is missing.
	errBrokerRequired = errors.New("broker address must be provided")
	// errUnknownHardwareMode is returned when hardware_mode is not a known backend.
	errUnknownHardwareMode = errors.New("unknown hardware mode")
	// errUnknownLogLevel is returned when log_level cannot be parsed.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BrokerAddress == "" {
		return errBrokerRequired
	}

	parsed, err := url.Parse(cfg.BrokerAddress)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid broker address %q: %w", cfg.BrokerAddress, errBrokerRequired)
	}

	// Set default topic prefix if not specified.
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}

	// Set default state file if not specified.
	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	// Set default timeout if not specified.
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Default to simulated hardware so a fresh checkout runs anywhere.
	if cfg.HardwareMode == "" {
		cfg.HardwareMode = HardwareModeSim
	}

	if cfg.HardwareMode != HardwareModeSysfs && cfg.HardwareMode != HardwareModeSim {
		return fmt.Errorf("hardware mode %q: %w", cfg.HardwareMode, errUnknownHardwareMode)
	}

	if cfg.LogLevel != "" {
		if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("log level %q: %w", cfg.LogLevel, errUnknownLogLevel)
		}
	}

	return nil
}
