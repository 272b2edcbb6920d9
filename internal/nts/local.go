package nts

// LocalStore is the on-device key-value fallback, scoped to a namespace
// shared with the companion process. Writes replace unconditionally and
// there are no transactions across keys.
type LocalStore interface {
	// Read returns the bytes stored under key, or nil, nil if the key is absent.
	Read(key string) ([]byte, error)

	// Write replaces the bytes stored under key.
	Write(key string, data []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// Notifier broadcasts that shared collections changed so the companion
// process reloads its view.
type Notifier interface {
	ReloadAll() error
}

// NopNotifier is a Notifier that does nothing.
type NopNotifier struct{}

func (NopNotifier) ReloadAll() error { return nil }
