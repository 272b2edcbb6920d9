package cloud

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nts-go/internal/encryption"
	"nts-go/internal/model"
	"nts-go/internal/testutil"
)

func TestFileSystemDatabase_ModifyQueryDelete(t *testing.T) {
	root := t.TempDir()
	db, err := NewFileSystemDatabase(root, nil)
	if err != nil {
		t.Fatalf("NewFileSystemDatabase() error = %v", err)
	}
	ctx := context.Background()
	a := newNoteAdapter(db)
	notes := makeNotes(3)

	if err := db.AccountStatus(ctx); err != nil {
		t.Fatalf("AccountStatus() error = %v", err)
	}

	res, err := a.SaveBatch(ctx, notes)
	if err != nil || !res.OK() {
		t.Fatalf("SaveBatch() = %+v, %v", res, err)
	}

	if _, err := os.Stat(filepath.Join(root, "Note", notes[0].ID+".json")); err != nil {
		t.Errorf("record file not written: %v", err)
	}

	got, err := a.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("FetchAll() = %d records, want 3", len(got))
	}

	n, err := a.DeleteAll(ctx)
	if err != nil || n != 3 {
		t.Fatalf("DeleteAll() = %d, %v; want 3, nil", n, err)
	}
	got, _ = a.FetchAll(ctx)
	if len(got) != 0 {
		t.Errorf("FetchAll() after DeleteAll = %d records, want 0", len(got))
	}
}

func TestFileSystemDatabase_QueryMissingType(t *testing.T) {
	db, err := NewFileSystemDatabase(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileSystemDatabase() error = %v", err)
	}
	res, err := db.Query(context.Background(), "PersonEntry")
	if err != nil || len(res) != 0 {
		t.Errorf("Query() = %v, %v; want empty, nil", res, err)
	}
}

func TestFileSystemDatabase_CorruptFileReportedPerRecord(t *testing.T) {
	root := t.TempDir()
	db, _ := NewFileSystemDatabase(root, nil)
	a := newNoteAdapter(db)
	a.SaveBatch(context.Background(), makeNotes(2))

	if err := os.WriteFile(filepath.Join(root, "Note", "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := db.Query(context.Background(), "Note")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	bad := 0
	for _, r := range res {
		if r.Err != nil {
			bad++
			if r.Name != "broken" {
				t.Errorf("unexpected failing record %q", r.Name)
			}
		}
	}
	if bad != 1 {
		t.Errorf("failing records = %d, want 1", bad)
	}

	got, err := a.FetchAll(context.Background())
	if err != nil || len(got) != 2 {
		t.Errorf("FetchAll() = %d, %v; want 2, nil", len(got), err)
	}
}

func TestFileSystemDatabase_Sealed(t *testing.T) {
	root := t.TempDir()
	enc, dec := testutil.NewFakeKeyring()

	db, _ := NewFileSystemDatabase(root, NewPayload(enc, dec))
	a := newNoteAdapter(db)
	note := makeNotes(1)[0]
	if err := a.Save(context.Background(), note); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(root, "Note", note.ID+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if !encryption.IsSealed(raw) {
		t.Error("stored payload is not sealed")
	}

	// A reader without the key cannot decode, and the record is skipped
	locked, _ := NewFileSystemDatabase(root, NewPayload(enc, nil))
	res, _ := locked.Query(context.Background(), "Note")
	if len(res) != 1 || !errors.Is(res[0].Err, ErrLocked) {
		t.Errorf("Query() without key = %+v, want ErrLocked", res)
	}

	got, err := a.FetchAll(context.Background())
	if err != nil || len(got) != 1 || got[0].Text != note.Text {
		t.Errorf("FetchAll() = %+v, %v", got, err)
	}
}

func TestFileSystemDatabase_RejectsBadNames(t *testing.T) {
	db, _ := NewFileSystemDatabase(t.TempDir(), nil)
	rec := model.NewWireRecord("Note", "../escape").Set("text", model.StringValue("x"))

	failed, err := db.Modify(context.Background(), []model.WireRecord{rec})
	if err != nil {
		t.Fatalf("Modify() error = %v", err)
	}
	if len(failed) != 1 {
		t.Errorf("Modify() failures = %d, want 1", len(failed))
	}
}

func TestFileSystemDatabase_Unavailable(t *testing.T) {
	root := filepath.Join(t.TempDir(), "remote")
	db, err := NewFileSystemDatabase(root, nil)
	if err != nil {
		t.Fatalf("NewFileSystemDatabase() error = %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	if err := db.AccountStatus(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("AccountStatus() error = %v, want ErrUnavailable", err)
	}
}
