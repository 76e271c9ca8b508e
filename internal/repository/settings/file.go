package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/pocket-sentinel/internal/config"
	"github.com/oshokin/pocket-sentinel/internal/domain/guard"
)

// State is the persisted guard document: the configuration snapshot taken
// at the last arm plus the protection-active flag consulted after an
// unplanned restart.
type State struct {
	// Timestamp is when the document was last written.
	Timestamp time.Time `yaml:"timestamp"`
	// ProtectionActive reports whether the guard was armed when last persisted.
	ProtectionActive bool `yaml:"protection_active"`
	// Config is the configuration snapshot to re-arm with, nil when never armed.
	Config *guard.Config `yaml:"config,omitempty"`
}

// Clone returns a deep copy of the persisted state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.Config = s.Config.Clone()

	return &cloned
}

// Repository defines persistence operations for the guard state.
type Repository interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("guard state not found")

// FileRepository persists the guard state to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the YAML state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err = yaml.Unmarshal(contents, &state); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return &state, nil
}

// Save writes the state to disk, stamping the write time.
func (r *FileRepository) Save(_ context.Context, state *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := state.Clone()
	snapshot.Timestamp = time.Now()

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
