package guard

import "errors"

var (
	// ErrNoKindsEnabled is returned when arming is requested with an empty kind set.
	ErrNoKindsEnabled = errors.New("no detection kinds enabled")
	// ErrUnknownKind is returned when a configuration names a kind outside the closed set.
	ErrUnknownKind = errors.New("unknown detection kind")
	// ErrDebounceOutOfRange is returned when a per-kind debounce violates its bounds.
	ErrDebounceOutOfRange = errors.New("debounce duration out of range")
	// ErrSourceUnavailable marks a signal source that cannot be subscribed
	// (missing hardware or permission). Non-fatal: the detector degrades.
	ErrSourceUnavailable = errors.New("signal source unavailable")
	// ErrOutputUnavailable marks an alarm output that could not be started.
	ErrOutputUnavailable = errors.New("alarm output unavailable")
	// ErrInvalidTransition marks a lifecycle call that is a no-op in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)
