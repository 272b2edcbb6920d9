package local

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileSystemStore(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		wantErr   bool
	}{
		{"valid namespace", "group.nts", false},
		{"empty namespace", "", true},
		{"path separator", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			s, err := NewFileSystemStore(root, tt.namespace)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFileSystemStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			info, err := os.Stat(s.Dir())
			if err != nil || !info.IsDir() {
				t.Errorf("namespace directory not created: %v", err)
			}
		})
	}
}

func TestFileSystemStore_ReadWriteDelete(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir(), "group.nts")
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	got, err := s.Read("notes")
	if err != nil || got != nil {
		t.Fatalf("Read() of missing key = %q, %v; want nil, nil", got, err)
	}

	if err := s.Write("notes", []byte("[]")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Write("notes", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	got, err = s.Read("notes")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Errorf("Read() = %q, want replaced value", got)
	}

	// No temp files are left behind
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 1 {
		t.Errorf("namespace dir has %d entries, want 1", len(entries))
	}

	if err := s.Delete("notes"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "notes")); !os.IsNotExist(err) {
		t.Errorf("file still exists after Delete(): %v", err)
	}
	if err := s.Delete("notes"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestFileSystemStore_RejectsBadKeys(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir(), "group.nts")
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	for _, key := range []string{"", "../escape", ".tmp-123"} {
		if err := s.Write(key, []byte("x")); err == nil {
			t.Errorf("Write(%q) expected error", key)
		}
		if _, err := s.Read(key); err == nil {
			t.Errorf("Read(%q) expected error", key)
		}
	}
}
