package cloud

import (
	"context"
	"fmt"

	"nts-go/internal/config"
)

// NewDatabaseFromConfig creates a Database implementation based on the remote
// config type. Type "none" returns nil: stores run local-only.
func NewDatabaseFromConfig(ctx context.Context, cfg config.RemoteConfig, payload *Payload) (Database, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "memory":
		return NewMemoryDatabase(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem remote requires fs_root to be set")
		}
		return NewFileSystemDatabase(cfg.FSRoot, payload)
	case "s3":
		return NewS3Database(ctx, cfg, payload)
	default:
		return nil, fmt.Errorf("unknown remote type: %s", cfg.Type)
	}
}
