// Package hardware defines the event values and monitor interfaces that
// wrap the four hardware/OS signal channels (power, wireless link, audio
// route, proximity). Backends live in the sim and sysfs subpackages;
// everything above this package consumes the interfaces only.
package hardware
