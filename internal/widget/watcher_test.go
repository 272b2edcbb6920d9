package widget

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nts-go/internal/nts"
	"nts-go/internal/testutil"
)

func TestFileNotifier_ReloadAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "group.nts")
	n, err := NewFileNotifier(dir, testutil.FixedClock())
	if err != nil {
		t.Fatalf("NewFileNotifier() error = %v", err)
	}
	if err := n.ReloadAll(); err != nil {
		t.Fatalf("ReloadAll() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SignalName))
	if err != nil {
		t.Fatalf("reading signal: %v", err)
	}
	if string(data) != "2024-01-15T10:30:00Z\n" {
		t.Errorf("signal = %q", data)
	}
}

func TestWatcher_SeesReload(t *testing.T) {
	dir := t.TempDir()
	n, _ := NewFileNotifier(dir, testutil.FixedClock())

	w, err := NewWatcher(dir, nts.NewNopLogger())
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unrelated files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Reloads():
		t.Fatal("reload reported for an unrelated file")
	case <-time.After(100 * time.Millisecond):
	}

	if err := n.ReloadAll(); err != nil {
		t.Fatalf("ReloadAll() error = %v", err)
	}
	select {
	case <-w.Reloads():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), nts.NewNopLogger()); err == nil {
		t.Error("NewWatcher() expected error for missing directory")
	}
}
