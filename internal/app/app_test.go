package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nts-go/internal/config"
	"nts-go/internal/encryption"
	"nts-go/internal/model"
	"nts-go/internal/nts"
	"nts-go/internal/widget"
)

// testConfig keeps every store on disk under one temp dir so a second app
// built from the same config sees what the first one wrote.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("test-host", base)
	cfg.AppVersion = "test"
	cfg.Local = config.LocalConfig{
		Type:      "filesystem",
		Namespace: config.DefaultNamespace,
		Dir:       filepath.Join(base, "data"),
	}
	cfg.Remote = config.RemoteConfig{Type: "filesystem", FSRoot: filepath.Join(base, "remote")}
	cfg.Encryption = config.EncryptionConfig{Type: "test"}
	return cfg
}

func staticPassphrase(p string) PassphraseFunc {
	return func() (string, error) { return p, nil }
}

func openApp(t *testing.T, cfg *config.Config) *NtsApp {
	t.Helper()
	a, err := NewNtsApp(context.Background(), cfg, "Test", staticPassphrase("secret"))
	if err != nil {
		t.Fatalf("NewNtsApp() error = %v", err)
	}
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return a
}

func TestNtsApp_PersistsAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first := openApp(t, cfg)
	note, err := first.Notes().Add(ctx, model.NewNote("call mum"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := first.Todos().Add(ctx, model.NewTodoItem("milk")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second := openApp(t, cfg)
	defer second.Close()

	got, ok := second.Notes().Get(note.ID)
	if !ok || got.Text != "call mum" {
		t.Errorf("Get() = %+v, %v; want the note from the first run", got, ok)
	}
	if second.Notes().Source() != nts.SourceRemote {
		t.Errorf("Source() = %v, want remote", second.Notes().Source())
	}
	if second.Todos().Len() != 1 {
		t.Errorf("Todos().Len() = %d, want 1", second.Todos().Len())
	}

	if _, err := os.Stat(filepath.Join(cfg.Local.Dir, cfg.Local.Namespace, widget.SignalName)); err != nil {
		t.Errorf("reload signal not written: %v", err)
	}
}

func TestNtsApp_LocalOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote = config.RemoteConfig{Type: "none"}
	cfg.Encryption = config.EncryptionConfig{Type: "none"}
	ctx := context.Background()

	a, err := NewNtsApp(ctx, cfg, "Test", nil)
	if err != nil {
		t.Fatalf("NewNtsApp() error = %v", err)
	}
	defer a.Close()
	a.Load(ctx)
	a.People().Add(ctx, model.NewPerson("Alex"))

	status := a.Status(ctx)
	if status.RemoteType != "none" || status.RemoteAvailable {
		t.Errorf("Status() remote = %q/%v, want none/false", status.RemoteType, status.RemoteAvailable)
	}
	if len(status.Collections) != 5 {
		t.Fatalf("Status() collections = %d, want 5", len(status.Collections))
	}
	for _, c := range status.Collections {
		if c.Source != nts.SourceLocal {
			t.Errorf("%s source = %v, want local", c.Name, c.Source)
		}
		if c.Name == "people" && c.Count != 1 {
			t.Errorf("people count = %d, want 1", c.Count)
		}
	}
}

func TestNtsApp_EncryptionErrors(t *testing.T) {
	t.Run("missing age keys", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Encryption = config.EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(cfg.BaseDir, "keys", "nts.pub"),
			PrivateKeyPath: filepath.Join(cfg.BaseDir, "keys", "nts.key"),
		}
		if _, err := NewNtsApp(context.Background(), cfg, "Test", staticPassphrase("x")); err == nil {
			t.Error("NewNtsApp() expected error for missing keys")
		}
	})

	t.Run("passphrase unavailable", func(t *testing.T) {
		cfg := testConfig(t)
		failing := func() (string, error) { return "", ErrNoPassphrase }
		_, err := NewNtsApp(context.Background(), cfg, "Test", failing)
		if !errors.Is(err, ErrNoPassphrase) {
			t.Errorf("NewNtsApp() error = %v, want ErrNoPassphrase", err)
		}
	})
}

func TestNtsApp_SealedWithAge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Encryption = config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(cfg.BaseDir, "keys", "nts.pub"),
		PrivateKeyPath: filepath.Join(cfg.BaseDir, "keys", "nts.key"),
	}
	recipient, err := SetupEncryption(cfg.Encryption, "secret")
	if err != nil {
		t.Fatalf("SetupEncryption() error = %v", err)
	}
	if recipient == "" {
		t.Error("SetupEncryption() returned empty recipient")
	}
	if _, err := SetupEncryption(cfg.Encryption, "secret"); !errors.Is(err, encryption.ErrKeyExists) {
		t.Errorf("SetupEncryption() error = %v, want ErrKeyExists", err)
	}

	ctx := context.Background()
	first := openApp(t, cfg)
	first.Reminders().Add(ctx, model.NewReminder("dentist"))
	first.Close()

	second := openApp(t, cfg)
	defer second.Close()
	if second.Reminders().Len() != 1 || second.Reminders().Source() != nts.SourceRemote {
		t.Errorf("reminders = %d from %v, want 1 from remote", second.Reminders().Len(), second.Reminders().Source())
	}
}
