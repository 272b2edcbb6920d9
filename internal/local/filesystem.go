package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nts-go/internal/nts"
)

// FileSystemStore is a LocalStore that keeps one file per key:
//
//	<root>/
//	  <namespace>/
//	    notes          (JSON array)
//	    currentIndex   (decimal text)
//	    .reload        (reload signal, see widget)
//
// Writes go through a temp file and rename so a concurrent reader never
// sees a partial value.
type FileSystemStore struct {
	root string
	dir  string
}

// NewFileSystemStore creates the namespace directory under root.
func NewFileSystemStore(root, namespace string) (*FileSystemStore, error) {
	if namespace == "" || strings.ContainsAny(namespace, `/\`) {
		return nil, fmt.Errorf("invalid namespace %q", namespace)
	}
	dir := filepath.Join(root, namespace)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create namespace directory: %w", err)
	}
	return &FileSystemStore{root: root, dir: dir}, nil
}

// Dir returns the namespace directory.
func (s *FileSystemStore) Dir() string { return s.dir }

func (s *FileSystemStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".tmp-") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FileSystemStore) Read(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("reading key %s: %w", key, err)
	}
	return data, nil
}

func (s *FileSystemStore) Write(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return writeFileAtomic(p, data)
}

func (s *FileSystemStore) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// writeFileAtomic writes data to destPath using a temp file + rename.
func writeFileAtomic(destPath string, data []byte) error {
	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements nts.LocalStore
var _ nts.LocalStore = (*FileSystemStore)(nil)
