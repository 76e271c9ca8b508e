// Package sim provides scriptable in-memory implementations of the four
// hardware monitors. The daemon wires them in simulation mode and the
// detector/orchestrator tests drive scenarios through them.
package sim
