package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// openTestDB opens a single-connection in-memory database so every query
// sees the same schema.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApply(t *testing.T) {
	db := openTestDB(t)

	v, dirty, err := Version(db)
	if err != nil || v != 0 || dirty {
		t.Fatalf("Version() on fresh database = %d, %v, %v; want 0, false, nil", v, dirty, err)
	}

	for i := range 2 {
		if err := Apply(db); err != nil {
			t.Fatalf("Apply() #%d error = %v", i+1, err)
		}
	}

	for _, table := range []string{"kv", "schema_migrations"} {
		var name string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	latest, err := Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest != 1 {
		t.Errorf("Latest() = %d, want 1", latest)
	}
	if v, dirty, _ := Version(db); v != latest || dirty {
		t.Errorf("Version() = %d, %v; want %d, false", v, dirty, latest)
	}
}

func TestApply_RefusesUnknownSchema(t *testing.T) {
	tests := []struct {
		name    string
		tamper  string
		wantErr error
	}{
		{name: "newer build", tamper: "UPDATE schema_migrations SET version = 99", wantErr: ErrSchemaAhead},
		{name: "dirty", tamper: "UPDATE schema_migrations SET dirty = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			if err := Apply(db); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if _, err := db.Exec(tt.tamper); err != nil {
				t.Fatal(err)
			}

			err := Apply(db)
			if err == nil {
				t.Fatal("Apply() succeeded on an unknown schema")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Apply() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_KV(t *testing.T) {
	db := openTestDB(t)
	if err := Apply(db); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	insert := "INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, datetime('now'))"
	if _, err := db.Exec(insert, "group.nts", "notes", []byte("[]")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	// Same key in another namespace is a different row.
	if _, err := db.Exec(insert, "group.other", "notes", []byte("[]")); err != nil {
		t.Fatalf("insert in second namespace: %v", err)
	}
	if _, err := db.Exec(insert, "group.nts", "notes", []byte("[1]")); err == nil {
		t.Error("duplicate (namespace, key) was accepted")
	}
	if _, err := db.Exec(insert, "ns", "k", nil); err == nil {
		t.Error("NULL value was accepted")
	}
}
