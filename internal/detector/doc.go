// Package detector implements the four signal detectors behind one shared
// contract: query current condition state, subscribe to change events,
// drive a debounced trigger, and report the alarm condition to the
// orchestrator through a single callback. An unusable source degrades its
// detector to permanently inactive instead of failing the arm.
package detector
