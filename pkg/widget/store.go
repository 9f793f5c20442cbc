package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps the display name between sessions.
type Store interface {
	Get() (string, error)
	Set(name string) error
	Clear() error
}

type MemoryStore struct {
	mu   sync.Mutex
	name string
}

func NewMemoryStore(name string) *MemoryStore { return &MemoryStore{name: name} }

func (m *MemoryStore) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name, nil
}

func (m *MemoryStore) Set(name string) error {
	m.mu.Lock()
	m.name = name
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error { return m.Set("") }

// FileStore persists the name as a small JSON document, e.g.
// ~/.config/zelvix/widget.json.
type FileStore struct {
	path string
}

type storedProfile struct {
	UserName string `json:"userName"`
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// DefaultFileStore places the document under the user config directory.
func DefaultFileStore() (*FileStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewFileStore(filepath.Join(dir, "zelvix", "widget.json")), nil
}

func (f *FileStore) Get() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.path, err)
	}
	var p storedProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("parse %s: %w", f.path, err)
	}
	return p.UserName, nil
}

func (f *FileStore) Set(name string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(storedProfile{UserName: name})
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
