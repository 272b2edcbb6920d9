package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HostID:     "test-host-abc",
		BaseDir:    "/home/user/.local/share/nts",
		LogDir:     "/home/user/.local/share/nts/log",
		AppVersion: "2.1",
		Local:      LocalConfig{Type: "filesystem", Namespace: "group.test", Dir: "/home/user/.local/share/nts/data"},
		Remote: RemoteConfig{
			Type:          "s3",
			S3Bucket:      "notes",
			S3Prefix:      "dev",
			S3Region:      "eu-west-1",
			S3Endpoint:    "http://localhost:9000",
			S3Concurrency: 4,
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/nts/keys/nts.pub",
			PrivateKeyPath: "/home/user/.local/share/nts/keys/nts.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if *got != *original {
		t.Errorf("Read() = %+v, want %+v", got, original)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/nts")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %q, want %q", cfg.HostID, "host-1")
	}
	if cfg.LogDir != "/data/nts/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/nts/log")
	}
	if cfg.Local.Type != "sqlite" || cfg.Local.Dir != "/data/nts/data" {
		t.Errorf("Local = %+v, want sqlite under /data/nts/data", cfg.Local)
	}
	if cfg.Local.Namespace != DefaultNamespace {
		t.Errorf("Local.Namespace = %q, want %q", cfg.Local.Namespace, DefaultNamespace)
	}
	if cfg.Remote.Type != "none" {
		t.Errorf("Remote.Type = %q, want none", cfg.Remote.Type)
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want none", cfg.Encryption.Type)
	}
	if cfg.Encryption.PublicKeyPath != "/data/nts/keys/nts.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/nts/keys/nts.pub")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nts.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nts.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nts.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Local = LocalConfig{Type: "memory", Namespace: "ns"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
		if got.Local.Type != "memory" {
			t.Errorf("Local.Type = %q, want memory", got.Local.Type)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/nts.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
