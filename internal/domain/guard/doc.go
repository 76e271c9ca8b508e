// Package guard contains core domain types for the anti-theft business logic.
//
// It defines the closed DetectionKind enumeration, the immutable arm-time
// Config snapshot with per-kind debounce bounds, the single-instance alarm
// Episode and the Status snapshot published to the presentation layer.
package guard
