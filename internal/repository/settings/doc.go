// Package settings persists the guard configuration snapshot and the
// protection-active flag to a YAML file, so protection survives process
// restarts.
package settings
