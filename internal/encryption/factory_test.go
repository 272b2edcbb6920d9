package encryption

import (
	"testing"

	"nts-go/internal/config"
)

func TestNewKeyringFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		wantNil bool
		wantErr bool
	}{
		{name: "none", typ: "none", wantNil: true},
		{name: "empty defaults to none", typ: "", wantNil: true},
		{name: "age", typ: "age"},
		{name: "test", typ: "test"},
		{name: "unknown", typ: "rot13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewKeyringFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewKeyringFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("NewKeyringFromConfig() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}
