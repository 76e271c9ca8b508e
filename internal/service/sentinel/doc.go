// Package sentinel hosts the orchestrator that owns the armed detector
// set, the single alarm episode and the siren, plus the daemon wiring
// that connects it to configuration, persistence, hardware monitors and
// the MQTT control channel.
package sentinel
