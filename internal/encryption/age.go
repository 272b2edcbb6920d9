package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"

	"nts-go/internal/config"
	"nts-go/internal/nts"
)

// ErrKeyExists is returned by Generate when a key pair is already on disk.
var ErrKeyExists = errors.New("key pair already exists")

// AgeKeyring seals payloads to an X25519 recipient. The recipient is kept in
// plaintext next to the identity, which is itself sealed with the user's
// passphrase using age's scrypt recipient.
type AgeKeyring struct {
	publicKeyPath  string
	privateKeyPath string

	mu        sync.Mutex
	recipient age.Recipient
}

var _ nts.Keyring = (*AgeKeyring)(nil)

func NewAgeKeyring(cfg config.EncryptionConfig) *AgeKeyring {
	return &AgeKeyring{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

func (k *AgeKeyring) Generate(passphrase string) (string, error) {
	if k.Exists() {
		return "", ErrKeyExists
	}
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating key pair: %w", err)
	}

	scrypt, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return "", fmt.Errorf("creating scrypt recipient: %w", err)
	}
	sealedIdentity, err := seal(scrypt, []byte(identity.String()+"\n"))
	if err != nil {
		return "", fmt.Errorf("sealing private key: %w", err)
	}

	recipient := identity.Recipient()
	if err := writeKey(k.privateKeyPath, sealedIdentity, 0o600); err != nil {
		return "", fmt.Errorf("writing private key: %w", err)
	}
	if err := writeKey(k.publicKeyPath, []byte(recipient.String()+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing public key: %w", err)
	}

	k.mu.Lock()
	k.recipient = recipient
	k.mu.Unlock()
	return recipient.String(), nil
}

func writeKey(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// Seal is safe for concurrent use; the recipient is read from disk once.
func (k *AgeKeyring) Seal(plain []byte) ([]byte, error) {
	r, err := k.loadRecipient()
	if err != nil {
		return nil, err
	}
	return seal(r, plain)
}

func seal(r age.Recipient, plain []byte) ([]byte, error) {
	var out bytes.Buffer
	w, err := age.Encrypt(&out, r)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plain); err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing payload: %w", err)
	}
	return out.Bytes(), nil
}

func (k *AgeKeyring) Unlock(passphrase string) (nts.Opener, error) {
	sealedIdentity, err := os.ReadFile(k.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	keyText, err := open(scrypt, sealedIdentity)
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}
	identities, err := age.ParseIdentities(bytes.NewReader(keyText))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identity in %s", k.privateKeyPath)
	}
	return &ageOpener{identity: identities[0]}, nil
}

func (k *AgeKeyring) Exists() bool {
	for _, path := range []string{k.publicKeyPath, k.privateKeyPath} {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// Recipient returns the public key in age's text form.
func (k *AgeKeyring) Recipient() (string, error) {
	r, err := k.loadRecipient()
	if err != nil {
		return "", err
	}
	if x, ok := r.(*age.X25519Recipient); ok {
		return x.String(), nil
	}
	return "", fmt.Errorf("unexpected recipient type %T", r)
}

func (k *AgeKeyring) loadRecipient() (age.Recipient, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.recipient != nil {
		return k.recipient, nil
	}

	data, err := os.ReadFile(k.publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipient in %s", k.publicKeyPath)
	}
	k.recipient = recipients[0]
	return k.recipient, nil
}

type ageOpener struct {
	identity age.Identity
}

func (o *ageOpener) Open(sealed []byte) ([]byte, error) {
	return open(o.identity, sealed)
}

func open(id age.Identity, sealed []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(sealed), id)
	if err != nil {
		return nil, err
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted payload: %w", err)
	}
	return plain, nil
}
