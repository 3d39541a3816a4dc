package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSession is returned by Store.Load when nothing is persisted.
var ErrNoSession = errors.New("no session")

// Store persists session state.
type Store interface {
	Load() (*State, error)
	Save(*State) error
	Clear() error
}

// DefaultDir returns ~/.config/flowday.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "flowday"), nil
}

// FileStore keeps the session in a JSON file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore stores session.json under dir, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, "session.json")}, nil
}

// Path is the session file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return &st, nil
}

func (f *FileStore) Save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0600)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// MemoryStore keeps state in process.
type MemoryStore struct {
	mu    sync.Mutex
	state *State
}

func (m *MemoryStore) Load() (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, ErrNoSession
	}
	st := *m.state
	return &st, nil
}

func (m *MemoryStore) Save(st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	m.state = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}
