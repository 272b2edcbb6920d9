package app

import (
	"fmt"
	"os"
	"path/filepath"

	"nts-go/internal/config"
)

// Paths are the locations nts falls back to when nothing overrides them.
type Paths struct {
	ConfigFile string // NTS_CONFIG_PATH, default ~/.config/nts.toml
	BaseDir    string // NTS_HOME, default ~/.local/share/nts
}

// DefaultPaths resolves Paths from the environment and the home directory.
func DefaultPaths() (Paths, error) {
	configFile, err := envPath("NTS_CONFIG_PATH", ".config", "nts.toml")
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := envPath("NTS_HOME", ".local", "share", "nts")
	if err != nil {
		return Paths{}, err
	}
	return Paths{ConfigFile: configFile, BaseDir: baseDir}, nil
}

// envPath returns $name if set, otherwise the home-relative fallback.
func envPath(name string, fallback ...string) (string, error) {
	if path := os.Getenv(name); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// LoadConfig reads the config file named by DefaultPaths.
func LoadConfig() (*config.Config, Paths, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, Paths{}, err
	}
	cfg, err := config.ReadFromFile(paths.ConfigFile)
	if err != nil {
		return nil, paths, fmt.Errorf("reading config (run `nts config init` first?): %w", err)
	}
	return cfg, paths, nil
}
