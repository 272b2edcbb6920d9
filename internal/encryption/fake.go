package encryption

import (
	"bytes"
	"fmt"

	"nts-go/internal/nts"
)

// fakeHeader marks payloads sealed by FakeKeyring.
var fakeHeader = []byte("nts-fake-seal\n")

// FakeKeyring seals by prefixing a fixed header, so tests can tell sealed
// payloads apart from plaintext without real keys. Output is deterministic.
type FakeKeyring struct {
	generated bool
}

var _ nts.Keyring = (*FakeKeyring)(nil)

func NewFakeKeyring() *FakeKeyring {
	return &FakeKeyring{}
}

func (k *FakeKeyring) Generate(passphrase string) (string, error) {
	k.generated = true
	return "fake-recipient", nil
}

func (k *FakeKeyring) Seal(plain []byte) ([]byte, error) {
	out := make([]byte, 0, len(fakeHeader)+len(plain))
	out = append(out, fakeHeader...)
	return append(out, plain...), nil
}

func (k *FakeKeyring) Unlock(passphrase string) (nts.Opener, error) {
	return FakeOpener{}, nil
}

// Exists is always true so wiring never asks for key generation.
func (k *FakeKeyring) Exists() bool { return true }

// FakeOpener strips the header added by FakeKeyring.
type FakeOpener struct{}

func (FakeOpener) Open(sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, fakeHeader) {
		return nil, fmt.Errorf("payload was not sealed by the fake keyring")
	}
	return bytes.Clone(sealed[len(fakeHeader):]), nil
}
