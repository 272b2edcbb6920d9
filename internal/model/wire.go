package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMalformedWireRecord is returned when a remote record cannot be converted
// back into its record type.
var ErrMalformedWireRecord = errors.New("malformed wire record")

// Value is a typed field value of a remote record. Exactly one member is set.
type Value struct {
	String *string    `json:"string,omitempty"`
	Time   *time.Time `json:"time,omitempty"`
	Int    *int64     `json:"int,omitempty"`
	List   []string   `json:"list,omitempty"`
}

func StringValue(s string) Value { return Value{String: &s} }

func TimeValue(t time.Time) Value {
	t = t.UTC()
	return Value{Time: &t}
}

func IntValue(i int64) Value { return Value{Int: &i} }

func ListValue(l []string) Value {
	if l == nil {
		l = []string{}
	}
	return Value{List: l}
}

// WireRecord is the remote representation of a record: a record type (the
// remote "table"), a record name (the record id) and named typed fields.
type WireRecord struct {
	Type   string           `json:"recordType"`
	Name   string           `json:"recordName"`
	Fields map[string]Value `json:"fields"`
}

// NewWireRecord creates an empty wire record.
func NewWireRecord(recordType, name string) WireRecord {
	return WireRecord{Type: recordType, Name: name, Fields: make(map[string]Value)}
}

// Set assigns a field and returns the record for chaining.
func (r WireRecord) Set(key string, v Value) WireRecord {
	if r.Fields == nil {
		r.Fields = make(map[string]Value)
	}
	r.Fields[key] = v
	return r
}

// String returns a string field.
func (r WireRecord) String(key string) (string, bool) {
	v, ok := r.Fields[key]
	if !ok || v.String == nil {
		return "", false
	}
	return *v.String, true
}

// RequireString returns a string field or a malformed-record error.
func (r WireRecord) RequireString(key string) (string, error) {
	s, ok := r.String(key)
	if !ok {
		return "", missingField(r, key)
	}
	return s, nil
}

// Time returns a time field.
func (r WireRecord) Time(key string) (time.Time, bool) {
	v, ok := r.Fields[key]
	if !ok || v.Time == nil {
		return time.Time{}, false
	}
	return *v.Time, true
}

// Int returns an integer field.
func (r WireRecord) Int(key string) (int64, bool) {
	v, ok := r.Fields[key]
	if !ok || v.Int == nil {
		return 0, false
	}
	return *v.Int, true
}

// List returns a string-list field; absent lists read as empty.
func (r WireRecord) List(key string) []string {
	v, ok := r.Fields[key]
	if !ok {
		return nil
	}
	return v.List
}

// meta decodes the shared identity and timestamp fields. The record name must
// be a UUID and date is required; lastModified defaults to date.
func (r WireRecord) meta() (Meta, error) {
	if _, err := uuid.Parse(r.Name); err != nil {
		return Meta{}, fmt.Errorf("%w: %s record name %q is not a UUID", ErrMalformedWireRecord, r.Type, r.Name)
	}
	date, ok := r.Time("date")
	if !ok {
		return Meta{}, missingField(r, "date")
	}
	m := Meta{ID: r.Name, Date: date}
	if lm, ok := r.Time("lastModified"); ok {
		m.LastModified = modifiedOrDate(&lm, date)
	} else {
		m.LastModified = date
	}
	return m, nil
}

func missingField(r WireRecord, key string) error {
	return fmt.Errorf("%w: %s %s missing field %q", ErrMalformedWireRecord, r.Type, r.Name, key)
}
