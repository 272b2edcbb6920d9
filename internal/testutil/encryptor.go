package testutil

import (
	"nts-go/internal/encryption"
	"nts-go/internal/nts"
)

// NewFakeKeyring returns a deterministic keyring and its unlocked opener.
func NewFakeKeyring() (nts.Keyring, nts.Opener) {
	k := encryption.NewFakeKeyring()
	o, _ := k.Unlock("")
	return k, o
}
