package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	stateDir  = ".wiki"
	stateFile = "state.json"

	stateDirPerm  = 0o750
	stateFilePerm = 0o600
)

// clientState is the persisted part of the client between runs.
type clientState struct {
	Fragment  string    `json:"fragment"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileLocation keeps the fragment in a JSON state file so the last visited
// page survives between commands.
type FileLocation struct {
	mu   sync.Mutex
	path string
}

// NewFileLocation creates a location backed by path.
func NewFileLocation(path string) *FileLocation {
	return &FileLocation{path: path}
}

// Fragment implements wiki.Location. A missing or unreadable file yields no fragment.
func (l *FileLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Cannot read client state", "path", l.path, "error", err)
		}
		return ""
	}

	var state clientState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("Ignoring corrupt client state", "path", l.path, "error", err)
		return ""
	}
	return state.Fragment
}

// SetFragment implements wiki.Location.
func (l *FileLocation) SetFragment(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(clientState{Fragment: key, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), stateDirPerm); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, stateFilePerm); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
