package encryption

import (
	"bytes"
	"testing"
)

func TestFakeKeyring(t *testing.T) {
	t.Parallel()

	k := NewFakeKeyring()
	if !k.Exists() {
		t.Error("Exists() = false, want true")
	}
	if _, err := k.Generate("any"); err != nil || !k.generated {
		t.Errorf("Generate() error = %v, generated = %v", err, k.generated)
	}

	input := []byte(`{"recordType":"Note"}`)
	first, _ := k.Seal(input)
	second, _ := k.Seal(input)
	if !bytes.Equal(first, second) {
		t.Error("Seal() is not deterministic")
	}
	if !bytes.HasPrefix(first, fakeHeader) {
		t.Error("Seal() output lacks the fake header")
	}

	opener, err := k.Unlock("any")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	got, err := opener.Open(first)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("Open() = %q, want %q", got, input)
	}
}

func TestFakeOpener_RejectsUnsealed(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("nts"), []byte(`{"recordType":"Note"}`)} {
		if _, err := (FakeOpener{}).Open(data); err == nil {
			t.Errorf("Open(%q) succeeded", data)
		}
	}
}

func TestIsSealed(t *testing.T) {
	t.Parallel()

	sealed, _ := NewFakeKeyring().Seal([]byte(`{"recordType":"Note"}`))

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"fake header", sealed, true},
		{"age header", []byte("age-encryption.org/v1\n-> X25519 abc\n"), true},
		{"plain json", []byte(`{"recordType":"Note"}`), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSealed(tt.data); got != tt.want {
				t.Errorf("IsSealed() = %v, want %v", got, tt.want)
			}
		})
	}
}
