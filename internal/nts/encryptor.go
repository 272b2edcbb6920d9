package nts

// Sealer protects a record payload before it leaves the device. Sealing
// needs only the public key, so saves never ask for a passphrase.
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
}

// Opener reverses Seal using a private key unlocked for the lifetime of
// the process. It is never written to disk.
type Opener interface {
	Open(sealed []byte) ([]byte, error)
}

// Keyring is a Sealer backed by a stored key pair.
type Keyring interface {
	Sealer

	// Generate creates the key pair, protecting the private half with
	// passphrase, and returns the public recipient string.
	Generate(passphrase string) (string, error)

	// Unlock decrypts the private key and returns an Opener for it.
	Unlock(passphrase string) (Opener, error)

	// Exists reports whether both halves of the key pair are present.
	Exists() bool
}
