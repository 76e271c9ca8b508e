package sysfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/pocket-sentinel/internal/hardware"
)

const (
	// DefaultPowerSupplyPath is the standard Linux power-supply sysfs tree.
	DefaultPowerSupplyPath = "/sys/class/power_supply"

	// defaultPollInterval is how often the tree is re-read while subscribed.
	defaultPollInterval = time.Second
)

// externalSupplyTypes lists the sysfs supply types that count as external power.
//
//nolint:gochecknoglobals // Closed lookup table for kernel-defined type names.
var externalSupplyTypes = map[string]struct{}{
	"Mains":    {},
	"USB":      {},
	"Wireless": {},
}

// PowerMonitor reads external power presence from the Linux sysfs tree and
// polls it while at least one subscriber is registered.
type PowerMonitor struct {
	// path is the power-supply sysfs directory.
	path string
	// interval is the polling period.
	interval time.Duration

	// mu guards the subscriber table and the poller lifecycle.
	mu sync.Mutex
	// next is the token handed to the next subscriber.
	next int
	// handlers maps tokens to registered callbacks.
	handlers map[int]func(hardware.PowerEvent)
	// stopPoll terminates the polling goroutine, nil while not polling.
	stopPoll chan struct{}
}

// NewPowerMonitor creates a monitor over the given sysfs directory.
// An empty path selects the standard location.
func NewPowerMonitor(path string) *PowerMonitor {
	if path == "" {
		path = DefaultPowerSupplyPath
	}

	return &PowerMonitor{
		path:     path,
		interval: defaultPollInterval,
		handlers: make(map[int]func(hardware.PowerEvent)),
	}
}

// Powered scans the sysfs tree and reports whether any external supply is online.
func (m *PowerMonitor) Powered(_ context.Context) (bool, error) {
	return m.scan()
}

// SubscribePower registers a handler for power transitions and starts the
// poller when it is the first subscription.
func (m *PowerMonitor) SubscribePower(handler func(hardware.PowerEvent)) (hardware.UnsubscribeFunc, error) {
	// Probe once up front so a missing sysfs tree degrades the detector
	// instead of producing a poller that can never report anything.
	initial, err := m.scan()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	token := m.next
	m.next++
	m.handlers[token] = handler

	if m.stopPoll == nil {
		m.stopPoll = make(chan struct{})
		go m.poll(initial, m.stopPoll)
	}

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.handlers, token)

		if len(m.handlers) == 0 && m.stopPoll != nil {
			close(m.stopPoll)
			m.stopPoll = nil
		}
	}, nil
}

// poll re-reads the tree on a ticker and emits events on state changes.
func (m *PowerMonitor) poll(last bool, stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			current, err := m.scan()
			if err != nil || current == last {
				continue
			}

			last = current
			m.emit(hardware.PowerEvent{Connected: current, At: time.Now()})
		}
	}
}

// emit delivers the event to every registered handler.
func (m *PowerMonitor) emit(event hardware.PowerEvent) {
	m.mu.Lock()
	snapshot := make([]func(hardware.PowerEvent), 0, len(m.handlers))

	for _, handler := range m.handlers {
		snapshot = append(snapshot, handler)
	}
	m.mu.Unlock()

	for _, handler := range snapshot {
		handler(event)
	}
}

// scan walks the supply entries and reports whether an external one is online.
func (m *PowerMonitor) scan() (bool, error) {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		return false, fmt.Errorf("read power supply tree: %w", err)
	}

	for _, entry := range entries {
		supplyPath := filepath.Join(m.path, entry.Name())

		supplyType, err := readTrimmed(filepath.Join(supplyPath, "type"))
		if err != nil {
			continue
		}

		if _, external := externalSupplyTypes[supplyType]; !external {
			continue
		}

		online, err := readTrimmed(filepath.Join(supplyPath, "online"))
		if err != nil {
			continue
		}

		if online == "1" {
			return true, nil
		}
	}

	return false, nil
}

// readTrimmed reads a single-value sysfs file.
func readTrimmed(path string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return strings.TrimSpace(string(contents)), nil
}
