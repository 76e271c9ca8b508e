// Package runloop implements the orchestrator's owning context: a
// single-goroutine executor that serializes every mutating operation on
// detector and episode state. Hardware callbacks hand their events off to
// the loop instead of touching shared state directly.
package runloop
