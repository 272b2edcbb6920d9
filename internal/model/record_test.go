package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var (
	created  = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	modified = time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC)
)

func TestNote_WithIdentity(t *testing.T) {
	t.Run("fills unset fields", func(t *testing.T) {
		n := NewNote("hello").WithIdentity("a", created)
		if n.ID != "a" {
			t.Errorf("ID = %q, want a", n.ID)
		}
		if !n.Date.Equal(created) || !n.LastModified.Equal(created) {
			t.Errorf("Date/LastModified = %v/%v, want %v", n.Date, n.LastModified, created)
		}
	})

	t.Run("keeps existing identity", func(t *testing.T) {
		n := Note{Meta: Meta{ID: "keep", Date: created, LastModified: modified}, Text: "x"}
		got := n.WithIdentity("other", time.Now())
		if got.ID != "keep" || !got.Date.Equal(created) || !got.LastModified.Equal(modified) {
			t.Errorf("WithIdentity() changed identity: %+v", got.Meta)
		}
	})
}

func TestNote_Touched(t *testing.T) {
	n := NewNote("x").WithIdentity("a", created).Touched(modified)
	if !n.Date.Equal(created) {
		t.Errorf("Date = %v, want %v", n.Date, created)
	}
	if !n.LastModified.Equal(modified) {
		t.Errorf("LastModified = %v, want %v", n.LastModified, modified)
	}
}

func TestMeta_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Meta
		wantErr bool
	}{
		{"valid", Meta{ID: idA, Date: created}, false},
		{"missing id", Meta{Date: created}, true},
		{"missing date", Meta{ID: idA}, true},
		{"short id", Meta{ID: "1", Date: created}, true},
		{"word id", Meta{ID: "note-one", Date: created}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Validate() error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestUnmarshal_LastModifiedDefaultsToDate(t *testing.T) {
	tests := []struct {
		name string
		json string
		want time.Time
	}{
		{
			name: "absent lastModified",
			json: `{"id":"a","date":"2024-03-01T09:00:00Z","text":"t"}`,
			want: created,
		},
		{
			name: "present lastModified",
			json: `{"id":"a","date":"2024-03-01T09:00:00Z","lastModified":"2024-03-02T18:30:00Z","text":"t"}`,
			want: modified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Note
			if err := json.Unmarshal([]byte(tt.json), &n); err != nil {
				t.Fatalf("Unmarshal(Note) error: %v", err)
			}
			if !n.LastModified.Equal(tt.want) {
				t.Errorf("Note.LastModified = %v, want %v", n.LastModified, tt.want)
			}

			var r Reminder
			if err := json.Unmarshal([]byte(tt.json), &r); err != nil {
				t.Fatalf("Unmarshal(Reminder) error: %v", err)
			}
			if !r.LastModified.Equal(tt.want) {
				t.Errorf("Reminder.LastModified = %v, want %v", r.LastModified, tt.want)
			}

			var p Person
			if err := json.Unmarshal([]byte(tt.json), &p); err != nil {
				t.Fatalf("Unmarshal(Person) error: %v", err)
			}
			if !p.LastModified.Equal(tt.want) {
				t.Errorf("Person.LastModified = %v, want %v", p.LastModified, tt.want)
			}

			var td TodoItem
			if err := json.Unmarshal([]byte(tt.json), &td); err != nil {
				t.Fatalf("Unmarshal(TodoItem) error: %v", err)
			}
			if !td.LastModified.Equal(tt.want) {
				t.Errorf("TodoItem.LastModified = %v, want %v", td.LastModified, tt.want)
			}
		})
	}
}

func TestCBTEntry_UnmarshalNormalizesDistortions(t *testing.T) {
	var e CBTEntry
	data := `{"id":"a","date":"2024-03-01T09:00:00Z","situation":"s","challenge":"c","alternative":"a","notes":"n"}`
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if e.DistortionIDs == nil || len(e.DistortionIDs) != 0 {
		t.Errorf("DistortionIDs = %#v, want empty non-nil", e.DistortionIDs)
	}
	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["distortionIds"].([]any); !ok {
		t.Errorf("distortionIds = %v, want JSON array", m["distortionIds"])
	}
}
