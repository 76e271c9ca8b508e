package sysfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pocket-sentinel/internal/hardware"
)

// writeSupply creates a fake sysfs supply entry.
func writeSupply(t *testing.T, root, name, supplyType, online string) {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type"), []byte(supplyType+"\n"), 0o644))

	if online != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "online"), []byte(online+"\n"), 0o644))
	}
}

// TestPowered_ScansExternalSupplies covers online mains, offline mains and battery-only trees.
func TestPowered_ScansExternalSupplies(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSupply(t, root, "BAT0", "Battery", "")
	writeSupply(t, root, "AC", "Mains", "1")

	monitor := NewPowerMonitor(root)

	powered, err := monitor.Powered(context.Background())
	require.NoError(t, err)
	require.True(t, powered)

	// Unplug.
	require.NoError(t, os.WriteFile(filepath.Join(root, "AC", "online"), []byte("0\n"), 0o644))

	powered, err = monitor.Powered(context.Background())
	require.NoError(t, err)
	require.False(t, powered)
}

// TestPowered_MissingTree reports an error so the detector can degrade.
func TestPowered_MissingTree(t *testing.T) {
	t.Parallel()

	monitor := NewPowerMonitor(filepath.Join(t.TempDir(), "nope"))

	_, err := monitor.Powered(context.Background())
	require.Error(t, err)
}

// TestSubscribePower_FailsWithoutTree ensures subscription errors instead of
// silently polling a missing directory.
func TestSubscribePower_FailsWithoutTree(t *testing.T) {
	t.Parallel()

	monitor := NewPowerMonitor(filepath.Join(t.TempDir(), "nope"))

	_, err := monitor.SubscribePower(func(hardware.PowerEvent) {})
	require.Error(t, err)
}
