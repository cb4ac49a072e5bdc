package mocks

import (
	"fmt"
	"path"
	"sync"

	"github.com/user/framepipe/pkg/ports"
)

// FileSystem is a mock implementation of ports.FileSystem.
// Paths are treated as slash-separated; relative paths are resolved
// against Cwd.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	// Cwd is the working directory used by Abs. Defaults to "/work".
	Cwd string

	ReadFileFunc  func(path string) ([]byte, error)
	WriteFileFunc func(path string, data []byte) error
	MkdirAllFunc  func(path string) error
	ExistsFunc    func(path string) (bool, error)
	AbsFunc       func(path string) (string, error)

	// MkdirCalls records every MkdirAll argument.
	MkdirCalls []string
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
		Cwd:   "/work",
	}
}

func (m *FileSystem) ReadFile(p string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(p)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[p]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s", p)
}

func (m *FileSystem) WriteFile(p string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(p, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = data
	return nil
}

func (m *FileSystem) MkdirAll(p string) error {
	m.mu.Lock()
	m.MkdirCalls = append(m.MkdirCalls, p)
	m.mu.Unlock()
	if m.MkdirAllFunc != nil {
		return m.MkdirAllFunc(p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[p] = true
	return nil
}

func (m *FileSystem) Exists(p string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(p)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[p]; ok {
		return true, nil
	}
	if _, ok := m.dirs[p]; ok {
		return true, nil
	}
	return false, nil
}

func (m *FileSystem) Abs(p string) (string, error) {
	if m.AbsFunc != nil {
		return m.AbsFunc(p)
	}
	if path.IsAbs(p) {
		return path.Clean(p), nil
	}
	return path.Join(m.Cwd, p), nil
}

// PutFile stores a file (for test setup).
func (m *FileSystem) PutFile(p string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = data
}

// GetFile returns the contents of a file (for test verification).
func (m *FileSystem) GetFile(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[p]
	return data, ok
}

// HasDir reports whether MkdirAll created p (for test verification).
func (m *FileSystem) HasDir(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[p]
}

var _ ports.FileSystem = (*FileSystem)(nil)
