package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nts-go/internal/config"
)

func TestDefaultPaths(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name       string
		configEnv  string
		homeEnv    string
		wantConfig string
		wantBase   string
	}{
		{
			name:       "env overrides",
			configEnv:  "/custom/config.toml",
			homeEnv:    "/custom/nts",
			wantConfig: "/custom/config.toml",
			wantBase:   "/custom/nts",
		},
		{
			name:       "home dir fallback",
			wantConfig: filepath.Join(home, ".config", "nts.toml"),
			wantBase:   filepath.Join(home, ".local", "share", "nts"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NTS_CONFIG_PATH", tt.configEnv)
			t.Setenv("NTS_HOME", tt.homeEnv)

			got, err := DefaultPaths()
			if err != nil {
				t.Fatalf("DefaultPaths() error = %v", err)
			}
			want := Paths{ConfigFile: tt.wantConfig, BaseDir: tt.wantBase}
			if got != want {
				t.Errorf("DefaultPaths() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nts.toml")
	t.Setenv("NTS_CONFIG_PATH", path)
	t.Setenv("NTS_HOME", dir)

	if _, _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() without a file succeeded")
	}

	if err := config.Init(path, config.NewConfig("host-1", dir)); err != nil {
		t.Fatalf("config.Init() error = %v", err)
	}
	cfg, paths, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.HostID != "host-1" || paths.ConfigFile != path {
		t.Errorf("LoadConfig() = host %q from %q", cfg.HostID, paths.ConfigFile)
	}
}

func TestEnvOrPrompt(t *testing.T) {
	t.Run("uses NTS_PASSPHRASE", func(t *testing.T) {
		t.Setenv("NTS_PASSPHRASE", "correct horse")

		got, err := EnvOrPrompt("Passphrase: ")()
		if err != nil {
			t.Fatalf("EnvOrPrompt() error = %v", err)
		}
		if got != "correct horse" {
			t.Errorf("passphrase = %q, want %q", got, "correct horse")
		}
	})

	t.Run("no terminal and no env", func(t *testing.T) {
		t.Setenv("NTS_PASSPHRASE", "")

		r, w, err := os.Pipe()
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		defer w.Close()

		if _, err := readPassword(r, w, "Passphrase: "); !errors.Is(err, ErrNoPassphrase) {
			t.Errorf("readPassword() error = %v, want ErrNoPassphrase", err)
		}
	})
}
