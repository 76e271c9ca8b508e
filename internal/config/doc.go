// Package config loads, validates and persists the daemon's YAML settings:
// broker connectivity, topic layout, state-file location and the
// signal-source backend selection.
package config
