package model

import (
	"encoding/json"
	"time"
)

// Reminder is a short piece of text surfaced periodically, also shown by the widget.
type Reminder struct {
	Meta
	Text string `json:"text"`
}

func NewReminder(text string) Reminder {
	return Reminder{Text: text}
}

func (r Reminder) WithIdentity(id string, at time.Time) Reminder {
	r.Meta = r.Meta.stamped(id, at)
	return r
}

func (r Reminder) Touched(at time.Time) Reminder {
	r.Meta = r.Meta.touched(at)
	return r
}

func (r *Reminder) UnmarshalJSON(data []byte) error {
	type alias Reminder
	aux := struct {
		*alias
		LastModified *time.Time `json:"lastModified"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.LastModified = modifiedOrDate(aux.LastModified, r.Date)
	return nil
}

// ReminderCodec converts reminders to and from the remote wire format.
type ReminderCodec struct{}

func (ReminderCodec) RecordType() string { return "ReminderEntry" }

func (c ReminderCodec) ToWire(r Reminder) WireRecord {
	return NewWireRecord(c.RecordType(), r.ID).
		Set("text", StringValue(r.Text)).
		Set("date", TimeValue(r.Date)).
		Set("lastModified", TimeValue(r.LastModified))
}

func (ReminderCodec) FromWire(w WireRecord) (Reminder, error) {
	var r Reminder
	meta, err := w.meta()
	if err != nil {
		return r, err
	}
	text, err := w.RequireString("text")
	if err != nil {
		return r, err
	}
	r.Meta = meta
	r.Text = text
	return r, nil
}
