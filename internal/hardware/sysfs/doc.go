// Package sysfs implements hardware monitors backed by the Linux sysfs
// tree. Only the power-supply source is covered; the remaining signals
// depend on platform glue outside this repository and stay on the sim
// backend until such glue exists.
package sysfs
