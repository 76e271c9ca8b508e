// Package control implements the client side of the MQTT control channel:
// it sends arm, disarm and dismiss commands to a running daemon and reads
// the retained status snapshot.
package control
