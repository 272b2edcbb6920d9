package encryption

import (
	"bytes"
	"fmt"

	"nts-go/internal/config"
	"nts-go/internal/nts"
)

// NewKeyringFromConfig creates a Keyring based on the configuration type.
// Type "none" (or empty) returns nil: payloads are stored in plaintext.
func NewKeyringFromConfig(cfg config.EncryptionConfig) (nts.Keyring, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeKeyring(cfg), nil
	case "test":
		return NewFakeKeyring(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

var ageHeader = []byte("age-encryption.org/v1\n")

// IsSealed reports whether data was produced by a keyring in this package
// rather than being plaintext.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, ageHeader) || bytes.HasPrefix(data, fakeHeader)
}
