// Package mqtt connects the daemon to an MQTT broker: it publishes alarm
// episode events and a retained status snapshot, and receives control
// commands (arm, disarm, dismiss) from the CLI subcommands.
package mqtt
