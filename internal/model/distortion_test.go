package model

import "testing"

func TestAllDistortions(t *testing.T) {
	all := AllDistortions()
	if len(all) != 10 {
		t.Fatalf("len(AllDistortions()) = %d, want 10", len(all))
	}
	seen := make(map[string]bool)
	for _, d := range all {
		if seen[d.ID] {
			t.Errorf("duplicate distortion id %s", d.ID)
		}
		seen[d.ID] = true
		if d.Title == "" || d.Description == "" || d.Emoji == "" {
			t.Errorf("distortion %s has empty fields: %+v", d.ID, d)
		}
	}

	all[0].Title = "mutated"
	if AllDistortions()[0].Title == "mutated" {
		t.Error("AllDistortions() returned shared backing array")
	}
}

func TestLookupDistortion(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		wantTitle string
		wantOK    bool
	}{
		{"exact", "00000000-0000-0000-0000-000000000003", "Mental Filter", true},
		{"unknown", "00000000-0000-0000-0000-000000000099", "", false},
		{"not a uuid", "labeling", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := LookupDistortion(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("LookupDistortion(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if d.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", d.Title, tt.wantTitle)
			}
		})
	}
}

func TestDistortions(t *testing.T) {
	e := CBTEntry{DistortionIDs: []string{
		"00000000-0000-0000-0000-000000000010",
		"00000000-0000-0000-0000-000000000099",
		"00000000-0000-0000-0000-000000000001",
	}}
	got := Distortions(e)
	if len(got) != 2 {
		t.Fatalf("len(Distortions()) = %d, want 2", len(got))
	}
	if got[0].Title != "Personalization" || got[1].Title != "All-or-Nothing Thinking" {
		t.Errorf("Distortions() = %q, %q", got[0].Title, got[1].Title)
	}
}
