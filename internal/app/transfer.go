package app

import (
	"context"
	"errors"
	"fmt"

	"nts-go/internal/nts"
)

// ImportMode selects how a full snapshot is applied.
type ImportMode string

const (
	// ImportOverwrite replaces every collection with the snapshot's contents.
	ImportOverwrite ImportMode = "overwrite"
	// ImportMerge merges every collection by identity and lastModified.
	ImportMerge ImportMode = "merge"
)

// ParseImportMode validates a mode name from the command line.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case ImportOverwrite, ImportMerge:
		return ImportMode(s), nil
	default:
		return "", fmt.Errorf("unknown import mode %q (want overwrite or merge)", s)
	}
}

// ImportSummary reports the outcome per collection, in a fixed order.
type ImportSummary struct {
	Mode    ImportMode
	Results []CollectionResult
}

type CollectionResult struct {
	Name   string
	Result nts.MergeResult
}

// Snapshot captures every loaded collection.
func (a *NtsApp) Snapshot() *nts.Snapshot {
	return &nts.Snapshot{
		Kind:       nts.SnapshotFull,
		AppVersion: a.cfg.AppVersion,
		ExportDate: a.clock.Now(),
		Notes:      a.notes.Items(),
		Reminders:  a.reminders.Items(),
		People:     a.people.Items(),
		CBTEntries: a.cbt.Items(),
		Todos:      a.todos.Items(),
	}
}

// Export encodes the loaded collections. SnapshotNotes exports notes only.
func (a *NtsApp) Export(kind nts.SnapshotKind) ([]byte, error) {
	snap := a.Snapshot()
	if kind == nts.SnapshotNotes {
		return nts.ExportNotes(snap)
	}
	return nts.ExportFull(snap)
}

// ImportNotes merges the notes of any snapshot into the notes collection.
func (a *NtsApp) ImportNotes(ctx context.Context, snap *nts.Snapshot) (nts.MergeResult, error) {
	res, err := a.notes.Merge(ctx, snap.Notes)
	if err != nil {
		return res, fmt.Errorf("merging notes: %w", err)
	}
	a.logger.Info("imported notes", "added", res.Added, "updated", res.Updated, "unchanged", res.Unchanged)
	return res, nil
}

// ImportAll applies a full snapshot to every collection. The caller is
// responsible for confirming with the user first. When a collection fails
// to apply, every collection touched so far, the failing one included, is
// restored to its contents from before the import.
func (a *NtsApp) ImportAll(ctx context.Context, snap *nts.Snapshot, mode ImportMode) (ImportSummary, error) {
	summary := ImportSummary{Mode: mode}
	steps := []importStep{
		stage(ctx, NoteKeys.Collection, a.notes, snap.Notes, mode),
		stage(ctx, ReminderKeys.Collection, a.reminders, snap.Reminders, mode),
		stage(ctx, PersonKeys.Collection, a.people, snap.People, mode),
		stage(ctx, CBTKeys.Collection, a.cbt, snap.CBTEntries, mode),
		stage(ctx, TodoKeys.Collection, a.todos, snap.Todos, mode),
	}

	for i, step := range steps {
		res, err := step.apply()
		if err != nil {
			err = fmt.Errorf("importing %s: %w", step.name, err)
			return ImportSummary{Mode: mode}, a.rollback(steps[:i+1], err)
		}
		summary.Results = append(summary.Results, CollectionResult{Name: step.name, Result: res})
		a.logger.Info("imported collection", "key", step.name, "mode", string(mode),
			"added", res.Added, "updated", res.Updated, "unchanged", res.Unchanged)
	}
	return summary, nil
}

type importStep struct {
	name    string
	apply   func() (nts.MergeResult, error)
	restore func() error
}

// stage captures the collection's current contents before anything is
// applied, so a failed import can put them back.
func stage[T nts.Record[T]](ctx context.Context, name string, store *nts.Store[T], records []T, mode ImportMode) importStep {
	prior := store.Items()
	return importStep{
		name:    name,
		apply:   func() (nts.MergeResult, error) { return apply(ctx, store, records, mode) },
		restore: func() error { return store.Restore(ctx, prior) },
	}
}

func (a *NtsApp) rollback(steps []importStep, cause error) error {
	errs := []error{cause}
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].restore(); err != nil {
			errs = append(errs, fmt.Errorf("restoring %s: %w", steps[i].name, err))
			continue
		}
		a.logger.Warn("import rolled back", "key", steps[i].name)
	}
	return errors.Join(errs...)
}

func apply[T nts.Record[T]](ctx context.Context, store *nts.Store[T], records []T, mode ImportMode) (nts.MergeResult, error) {
	if mode == ImportMerge {
		return store.Merge(ctx, records)
	}
	items := make([]T, len(records))
	copy(items, records)
	nts.SortByDateDesc(items)
	if err := store.Replace(ctx, items); err != nil {
		return nts.MergeResult{}, err
	}
	return nts.MergeResult{Added: len(items)}, nil
}
