// Package debounce provides the timer-based guard between a raw
// disconnection signal and the commitment to an alarm. Each detector owns
// exactly one Trigger; transient flicker cancels the countdown before it
// can fire.
package debounce
