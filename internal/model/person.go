package model

import (
	"encoding/json"
	"time"
)

// Person is a note about someone in the user's life.
type Person struct {
	Meta
	Text string `json:"text"`
}

func NewPerson(text string) Person {
	return Person{Text: text}
}

func (p Person) WithIdentity(id string, at time.Time) Person {
	p.Meta = p.Meta.stamped(id, at)
	return p
}

func (p Person) Touched(at time.Time) Person {
	p.Meta = p.Meta.touched(at)
	return p
}

func (p *Person) UnmarshalJSON(data []byte) error {
	type alias Person
	aux := struct {
		*alias
		LastModified *time.Time `json:"lastModified"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.LastModified = modifiedOrDate(aux.LastModified, p.Date)
	return nil
}

// PersonCodec converts people to and from the remote wire format.
type PersonCodec struct{}

func (PersonCodec) RecordType() string { return "PersonEntry" }

func (c PersonCodec) ToWire(p Person) WireRecord {
	return NewWireRecord(c.RecordType(), p.ID).
		Set("text", StringValue(p.Text)).
		Set("date", TimeValue(p.Date)).
		Set("lastModified", TimeValue(p.LastModified))
}

func (PersonCodec) FromWire(w WireRecord) (Person, error) {
	var p Person
	meta, err := w.meta()
	if err != nil {
		return p, err
	}
	text, err := w.RequireString("text")
	if err != nil {
		return p, err
	}
	p.Meta = meta
	p.Text = text
	return p, nil
}
