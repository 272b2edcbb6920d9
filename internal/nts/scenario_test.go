package nts_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"nts-go/internal/cloud"
	"nts-go/internal/model"
	"nts-go/internal/nts"
	"nts-go/internal/testutil"
)

// End-to-end walks through the sync layer, one per user-visible situation.

func TestScenario_AddThenReadLocal(t *testing.T) {
	f := newNoteFixture(t)

	a, err := f.store.Add(context.Background(), model.NewNote("A"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if diff := cmp.Diff([]model.Note{a}, f.readLocal(t)); diff != "" {
		t.Errorf("local fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_ExportResetImport(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture(t)

	a, _ := f.store.Add(ctx, model.NewNote("A"))
	f.clock.Advance(time.Hour)
	a.Text = "A edited"
	a, _ = f.store.Update(ctx, a)

	out, err := nts.ExportNotes(&nts.Snapshot{AppVersion: "test", ExportDate: f.clock.Now(), Notes: f.store.Items()})
	if err != nil {
		t.Fatalf("ExportNotes() error = %v", err)
	}

	// Fresh install
	fresh := newNoteFixture(t)
	snap, err := nts.ParseSnapshot(out)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if _, err := fresh.store.Merge(ctx, snap.Notes); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	items := fresh.store.Items()
	if len(items) != 1 {
		t.Fatalf("Len() = %d, want 1", len(items))
	}
	if items[0].ID != a.ID || items[0].Text != "A edited" || !items[0].LastModified.Equal(a.LastModified) {
		t.Errorf("imported = %+v, want %+v", items[0], a)
	}

	// Importing again changes nothing
	res, _ := fresh.store.Merge(ctx, snap.Notes)
	if res.Changed() || fresh.store.Len() != 1 {
		t.Errorf("re-import = %+v with %d records", res, fresh.store.Len())
	}
}

func TestScenario_OlderImportIgnored(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	f := newNoteFixture(t)
	f.store.Replace(ctx, []model.Note{noteAt(testutil.StubID(1), "device X", t0, t1)})

	res, err := f.store.Merge(ctx, []model.Note{noteAt(testutil.StubID(1), "device Y", t0, t0)})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Changed() {
		t.Errorf("Merge() = %+v, want unchanged", res)
	}
	got, _ := f.store.Get(testutil.StubID(1))
	if got.Text != "device X" || !got.LastModified.Equal(t1) {
		t.Errorf("record = %+v, want device X at %v", got, t1)
	}
}

func TestScenario_ImportAddsNewKeepsNewer(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	f := newNoteFixture(t)
	local := noteAt(testutil.StubID(1), "A local", t0, t1)
	f.store.Replace(ctx, []model.Note{local})

	b := noteAt(testutil.StubID(2), "B", t0, t0)
	res, err := f.store.Merge(ctx, []model.Note{noteAt(testutil.StubID(1), "A old", t0, t0), b})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Added != 1 || res.Updated != 0 {
		t.Errorf("Merge() = %+v, want added 1 updated 0", res)
	}
	if diff := cmp.Diff([]model.Note{local, b}, f.store.Items()); diff != "" {
		t.Errorf("collection mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_RemoteUnavailableAdd(t *testing.T) {
	f := newNoteFixture(t)
	f.remote.SetAvailable(false)

	a, err := f.store.Add(context.Background(), model.NewNote("offline"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if f.store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.store.Len())
	}
	if local := f.readLocal(t); len(local) != 1 || local[0].ID != a.ID {
		t.Errorf("local fallback = %+v", local)
	}
	if others := f.remote.TotalCalls() - f.remote.Calls("IsAvailable"); others != 0 {
		t.Errorf("%d remote calls beyond IsAvailable, want 0", others)
	}
}

func TestScenario_LargeCollectionChunked(t *testing.T) {
	ctx := context.Background()
	clock := testutil.FixedClock()
	db := cloud.NewMemoryDatabase()
	remote := cloud.NewAdapter[model.Note](db, model.NoteCodec{}, nts.NewNopLogger())
	store := nts.NewStore[model.Note](noteKeys, testutil.NewRecordingLocalStore(), remote, nil, nts.SyncRunner{}, nts.NewNopLogger(), clock, testutil.NewStubIDGenerator())

	notes := make([]model.Note, 850)
	for i := range notes {
		at := clock.Now().Add(-time.Duration(i) * time.Minute)
		notes[i] = noteAt(testutil.StubID(i+1), "bulk", at, at)
	}
	if err := store.Replace(ctx, notes); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if diff := cmp.Diff([]int{400, 400, 50}, db.ChunkSizes()); diff != "" {
		t.Errorf("chunk sizes mismatch (-want +got):\n%s", diff)
	}
	if db.Count("Note") != 850 {
		t.Errorf("remote holds %d notes, want 850", db.Count("Note"))
	}
}
