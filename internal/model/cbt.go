package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CBTEntry is a cognitive behavioural therapy thought record.
// DistortionIDs reference entries of the built-in CognitiveDistortion set.
type CBTEntry struct {
	Meta
	Situation     string   `json:"situation"`
	DistortionIDs []string `json:"distortionIds"`
	Challenge     string   `json:"challenge"`
	Alternative   string   `json:"alternative"`
	Notes         string   `json:"notes"`
}

func (e CBTEntry) WithIdentity(id string, at time.Time) CBTEntry {
	e.Meta = e.Meta.stamped(id, at)
	if e.DistortionIDs == nil {
		e.DistortionIDs = []string{}
	}
	return e
}

func (e CBTEntry) Touched(at time.Time) CBTEntry {
	e.Meta = e.Meta.touched(at)
	return e
}

func (e *CBTEntry) UnmarshalJSON(data []byte) error {
	type alias CBTEntry
	aux := struct {
		*alias
		LastModified *time.Time `json:"lastModified"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.LastModified = modifiedOrDate(aux.LastModified, e.Date)
	if e.DistortionIDs == nil {
		e.DistortionIDs = []string{}
	}
	return nil
}

// CBTEntryCodec converts thought records to and from the remote wire format.
type CBTEntryCodec struct{}

func (CBTEntryCodec) RecordType() string { return "CBTEntry" }

func (c CBTEntryCodec) ToWire(e CBTEntry) WireRecord {
	ids := make([]string, len(e.DistortionIDs))
	copy(ids, e.DistortionIDs)
	return NewWireRecord(c.RecordType(), e.ID).
		Set("situation", StringValue(e.Situation)).
		Set("challenge", StringValue(e.Challenge)).
		Set("alternative", StringValue(e.Alternative)).
		Set("notes", StringValue(e.Notes)).
		Set("date", TimeValue(e.Date)).
		Set("lastModified", TimeValue(e.LastModified)).
		Set("distortionIds", ListValue(ids))
}

func (CBTEntryCodec) FromWire(w WireRecord) (CBTEntry, error) {
	var e CBTEntry
	meta, err := w.meta()
	if err != nil {
		return e, err
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"situation", &e.Situation},
		{"challenge", &e.Challenge},
		{"alternative", &e.Alternative},
		{"notes", &e.Notes},
	}
	for _, f := range fields {
		v, err := w.RequireString(f.key)
		if err != nil {
			return CBTEntry{}, err
		}
		*f.dst = v
	}
	e.Meta = meta

	// Identifiers that fail to parse are dropped rather than failing the record.
	e.DistortionIDs = []string{}
	for _, raw := range w.List("distortionIds") {
		if _, err := uuid.Parse(raw); err != nil {
			continue
		}
		e.DistortionIDs = append(e.DistortionIDs, raw)
	}
	return e, nil
}
