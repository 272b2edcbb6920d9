package model

import (
	"encoding/json"
	"time"
)

// Note is a free-form journal entry, the content the widget cycles through.
type Note struct {
	Meta
	Text string `json:"text"`
}

// NewNote creates an unsaved note; the store assigns id and date on Add.
func NewNote(text string) Note {
	return Note{Text: text}
}

func (n Note) WithIdentity(id string, at time.Time) Note {
	n.Meta = n.Meta.stamped(id, at)
	return n
}

func (n Note) Touched(at time.Time) Note {
	n.Meta = n.Meta.touched(at)
	return n
}

func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	aux := struct {
		*alias
		LastModified *time.Time `json:"lastModified"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.LastModified = modifiedOrDate(aux.LastModified, n.Date)
	return nil
}

// NoteCodec converts notes to and from the remote wire format.
type NoteCodec struct{}

func (NoteCodec) RecordType() string { return "Note" }

func (c NoteCodec) ToWire(n Note) WireRecord {
	return NewWireRecord(c.RecordType(), n.ID).
		Set("text", StringValue(n.Text)).
		Set("date", TimeValue(n.Date)).
		Set("lastModified", TimeValue(n.LastModified))
}

func (NoteCodec) FromWire(r WireRecord) (Note, error) {
	var n Note
	meta, err := r.meta()
	if err != nil {
		return n, err
	}
	text, err := r.RequireString("text")
	if err != nil {
		return n, err
	}
	n.Meta = meta
	n.Text = text
	return n, nil
}
