package cloud

import (
	"encoding/json"
	"errors"
	"fmt"

	"nts-go/internal/encryption"
	"nts-go/internal/model"
	"nts-go/internal/nts"
)

// ErrLocked is returned when reading a sealed payload without an unlocked key.
var ErrLocked = errors.New("payload is sealed and no key is unlocked")

// Payload encodes wire records for object-style backends, sealing them
// when a keyring is configured. Plaintext payloads are always readable,
// so enabling encryption later does not strand existing records.
type Payload struct {
	sealer nts.Sealer
	opener nts.Opener
}

// NewPayload creates a Payload. Both arguments may be nil; without an
// opener sealed payloads fail with ErrLocked.
func NewPayload(sealer nts.Sealer, opener nts.Opener) *Payload {
	return &Payload{sealer: sealer, opener: opener}
}

// Sealed reports whether Marshal seals its output.
func (p *Payload) Sealed() bool { return p != nil && p.sealer != nil }

func (p *Payload) Marshal(rec model.WireRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %s: %w", rec.Type, rec.Name, err)
	}
	if !p.Sealed() {
		return data, nil
	}
	sealed, err := p.sealer.Seal(data)
	if err != nil {
		return nil, fmt.Errorf("sealing %s %s: %w", rec.Type, rec.Name, err)
	}
	return sealed, nil
}

func (p *Payload) Unmarshal(data []byte) (model.WireRecord, error) {
	var rec model.WireRecord
	if encryption.IsSealed(data) {
		if p == nil || p.opener == nil {
			return rec, ErrLocked
		}
		plain, err := p.opener.Open(data)
		if err != nil {
			return rec, fmt.Errorf("opening payload: %w", err)
		}
		data = plain
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decoding payload: %w", err)
	}
	return rec, nil
}
