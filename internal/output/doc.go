// Package output drives the alarm siren: looping sound on the alarm
// channel at forced maximum volume plus a repeating haptic pattern. The
// device handles (player, volume, haptics) sit behind interfaces; the
// siren owns the volume resource exclusively and restores it on stop.
package output
