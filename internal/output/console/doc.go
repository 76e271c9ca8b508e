// Package console provides console-backed alarm devices for simulation
// mode: playback and haptics log their transitions, volume is held in
// memory, and the default sound is a built-in reference that always
// resolves.
package console
