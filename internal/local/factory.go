package local

import (
	"fmt"
	"path/filepath"

	"nts-go/internal/config"
	"nts-go/internal/database"
	"nts-go/internal/nts"
)

// NewLocalStoreFromConfig creates a LocalStore implementation based on the
// local config type. The returned close function releases any resources the
// store holds and is never nil.
func NewLocalStoreFromConfig(cfg config.LocalConfig, clock nts.Clock) (nts.LocalStore, func() error, error) {
	nop := func() error { return nil }
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultNamespace
	}

	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nop, nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, nil, fmt.Errorf("filesystem local store requires dir to be set")
		}
		s, err := NewFileSystemStore(cfg.Dir, namespace)
		if err != nil {
			return nil, nil, err
		}
		return s, nop, nil
	case "sqlite":
		if cfg.Dir == "" {
			return nil, nil, fmt.Errorf("dir required for sqlite local store")
		}
		s, err := database.NewSQLiteStore(filepath.Join(cfg.Dir, "nts.db"), namespace, clock)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown local store type: %s", cfg.Type)
	}
}

// SignalDir returns the directory holding the reload signal file for cfg.
// Every backend keeps the signal on the filesystem so the widget can watch it.
func SignalDir(cfg config.LocalConfig, fallback string) string {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultNamespace
	}
	dir := cfg.Dir
	if dir == "" {
		dir = fallback
	}
	return filepath.Join(dir, namespace)
}
