package nts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nts-go/internal/model"
)

// ErrInvalidSnapshot wraps every error that rejects an import.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// SnapshotKind distinguishes the two import envelopes.
type SnapshotKind int

const (
	// SnapshotFull carries every collection and must be confirmed before
	// it is applied.
	SnapshotFull SnapshotKind = iota
	// SnapshotNotes carries notes only and is merged directly.
	SnapshotNotes
)

func (k SnapshotKind) String() string {
	if k == SnapshotNotes {
		return "notes"
	}
	return "full"
}

// Snapshot is a decoded export envelope.
type Snapshot struct {
	Kind       SnapshotKind
	AppVersion string
	ExportDate time.Time
	Notes      []model.Note
	Reminders  []model.Reminder
	People     []model.Person
	CBTEntries []model.CBTEntry
	Todos      []model.TodoItem
}

// Count returns the total number of records in the snapshot.
func (s *Snapshot) Count() int {
	return len(s.Notes) + len(s.Reminders) + len(s.People) + len(s.CBTEntries) + len(s.Todos)
}

// fullEnvelope is the multi-collection export. Notes travel under "entries".
type fullEnvelope struct {
	AppVersion string           `json:"appVersion"`
	CBTEntries []model.CBTEntry `json:"cbtEntries"`
	Entries    []model.Note     `json:"entries"`
	ExportDate time.Time        `json:"exportDate"`
	People     []model.Person   `json:"people"`
	Reminders  []model.Reminder `json:"reminders"`
	Todos      []model.TodoItem `json:"todos"`
}

type notesEnvelope struct {
	AppVersion string       `json:"appVersion"`
	ExportDate time.Time    `json:"exportDate"`
	Notes      []model.Note `json:"notes"`
}

// ParseSnapshot decodes either envelope. The envelope is rejected as a whole
// if it does not decode or if any record lacks an id or date.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	_, hasNotes := probe["notes"]
	_, hasEntries := probe["entries"]

	var snap *Snapshot
	switch {
	case hasEntries || hasAny(probe, "reminders", "people", "cbtEntries", "todos"):
		var env fullEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		snap = &Snapshot{
			Kind:       SnapshotFull,
			AppVersion: env.AppVersion,
			ExportDate: env.ExportDate,
			Notes:      env.Entries,
			Reminders:  env.Reminders,
			People:     env.People,
			CBTEntries: env.CBTEntries,
			Todos:      env.Todos,
		}
	case hasNotes:
		var env notesEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		snap = &Snapshot{
			Kind:       SnapshotNotes,
			AppVersion: env.AppVersion,
			ExportDate: env.ExportDate,
			Notes:      env.Notes,
		}
	default:
		return nil, fmt.Errorf("%w: no record collections found", ErrInvalidSnapshot)
	}

	if err := snap.validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func hasAny(m map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func (s *Snapshot) validate() error {
	if err := validateAll("notes", s.Notes); err != nil {
		return err
	}
	if err := validateAll("reminders", s.Reminders); err != nil {
		return err
	}
	if err := validateAll("people", s.People); err != nil {
		return err
	}
	if err := validateAll("cbtEntries", s.CBTEntries); err != nil {
		return err
	}
	return validateAll("todos", s.Todos)
}

func validateAll[T Record[T]](collection string, records []T) error {
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("%w: %s[%d]: %w", ErrInvalidSnapshot, collection, i, err)
		}
		if j, ok := seen[rec.RecordID()]; ok {
			return fmt.Errorf("%w: %s[%d]: id %s repeats %s[%d]", ErrInvalidSnapshot, collection, i, rec.RecordID(), collection, j)
		}
		seen[rec.RecordID()] = i
	}
	return nil
}

// ExportFull encodes every collection as the full envelope.
func ExportFull(s *Snapshot) ([]byte, error) {
	env := fullEnvelope{
		AppVersion: s.AppVersion,
		CBTEntries: nonNil(s.CBTEntries),
		Entries:    nonNil(s.Notes),
		ExportDate: s.ExportDate,
		People:     nonNil(s.People),
		Reminders:  nonNil(s.Reminders),
		Todos:      nonNil(s.Todos),
	}
	return encodeSorted(env)
}

// ExportNotes encodes only the notes as the notes envelope.
func ExportNotes(s *Snapshot) ([]byte, error) {
	env := notesEnvelope{
		AppVersion: s.AppVersion,
		ExportDate: s.ExportDate,
		Notes:      nonNil(s.Notes),
	}
	return encodeSorted(env)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// timeKeys are the fields rewritten to UTC on export.
var timeKeys = map[string]bool{"date": true, "lastModified": true, "exportDate": true}

// encodeSorted produces indented JSON with object keys sorted at every
// level and timestamps in UTC, so equal data always encodes identically.
func encodeSorted(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("re-decoding snapshot: %w", err)
	}
	normalizeTimes(generic)
	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(out, '\n'), nil
}

func normalizeTimes(v any) {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			if s, ok := val.(string); ok && timeKeys[k] {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					x[k] = t.UTC().Format(time.RFC3339Nano)
				}
				continue
			}
			normalizeTimes(val)
		}
	case []any:
		for _, val := range x {
			normalizeTimes(val)
		}
	}
}
