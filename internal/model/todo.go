package model

import (
	"encoding/json"
	"time"
)

// TodoItem is a checklist entry. Completion is independent of content.
type TodoItem struct {
	Meta
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

func NewTodoItem(text string) TodoItem {
	return TodoItem{Text: text}
}

func (t TodoItem) WithIdentity(id string, at time.Time) TodoItem {
	t.Meta = t.Meta.stamped(id, at)
	return t
}

func (t TodoItem) Touched(at time.Time) TodoItem {
	t.Meta = t.Meta.touched(at)
	return t
}

func (t *TodoItem) UnmarshalJSON(data []byte) error {
	type alias TodoItem
	aux := struct {
		*alias
		LastModified *time.Time `json:"lastModified"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.LastModified = modifiedOrDate(aux.LastModified, t.Date)
	return nil
}

// TodoItemCodec converts to-dos to and from the remote wire format.
// Completion is stored as an integer flag (1 = done).
type TodoItemCodec struct{}

func (TodoItemCodec) RecordType() string { return "TodoItem" }

func (c TodoItemCodec) ToWire(t TodoItem) WireRecord {
	var done int64
	if t.IsCompleted {
		done = 1
	}
	return NewWireRecord(c.RecordType(), t.ID).
		Set("text", StringValue(t.Text)).
		Set("isCompleted", IntValue(done)).
		Set("date", TimeValue(t.Date)).
		Set("lastModified", TimeValue(t.LastModified))
}

func (TodoItemCodec) FromWire(w WireRecord) (TodoItem, error) {
	var t TodoItem
	meta, err := w.meta()
	if err != nil {
		return t, err
	}
	text, err := w.RequireString("text")
	if err != nil {
		return t, err
	}
	done, ok := w.Int("isCompleted")
	if !ok {
		return t, missingField(w, "isCompleted")
	}
	t.Meta = meta
	t.Text = text
	t.IsCompleted = done == 1
	return t, nil
}
