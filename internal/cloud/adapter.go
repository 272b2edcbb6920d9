package cloud

import (
	"context"
	"fmt"

	"nts-go/internal/model"
	"nts-go/internal/nts"
)

// Codec converts one record type to and from its wire form.
type Codec[T any] interface {
	RecordType() string
	ToWire(T) model.WireRecord
	FromWire(model.WireRecord) (T, error)
}

// Adapter implements nts.RemoteStore for one record type over a Database.
type Adapter[T nts.Record[T]] struct {
	db        Database
	codec     Codec[T]
	logger    nts.Logger
	batchSize int
}

// NewAdapter creates an Adapter that writes at most nts.MaxBatchSize
// records per round-trip.
func NewAdapter[T nts.Record[T]](db Database, codec Codec[T], logger nts.Logger) *Adapter[T] {
	if logger == nil {
		logger = nts.NewNopLogger()
	}
	return &Adapter[T]{db: db, codec: codec, logger: logger, batchSize: nts.MaxBatchSize}
}

// RecordType returns the remote table this adapter reads and writes.
func (a *Adapter[T]) RecordType() string { return a.codec.RecordType() }

func (a *Adapter[T]) IsAvailable(ctx context.Context) bool {
	if err := a.db.AccountStatus(ctx); err != nil {
		a.logger.Debug("remote unavailable", "recordType", a.codec.RecordType(), "error", err)
		return false
	}
	return true
}

func (a *Adapter[T]) FetchAll(ctx context.Context) ([]T, error) {
	results, err := a.db.Query(ctx, a.codec.RecordType())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", a.codec.RecordType(), err)
	}

	records := make([]T, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			a.logger.Warn("skipping unreadable remote record", "recordType", a.codec.RecordType(), "name", res.Name, "error", res.Err)
			continue
		}
		rec, err := a.codec.FromWire(res.Record)
		if err != nil {
			a.logger.Warn("skipping malformed remote record", "recordType", a.codec.RecordType(), "name", res.Name, "error", err)
			continue
		}
		records = append(records, rec)
	}
	nts.SortByDateDesc(records)
	return records, nil
}

func (a *Adapter[T]) Save(ctx context.Context, record T) error {
	res, err := a.SaveBatch(ctx, []T{record})
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("saving %s %s: %w", a.codec.RecordType(), record.RecordID(), res.Failures[0].Err)
	}
	return nil
}

// SaveBatch writes records in chunks. A failed round-trip marks every record
// in its chunk failed and the next chunk is still attempted. Only context
// cancellation stops the batch early and is returned as an error.
func (a *Adapter[T]) SaveBatch(ctx context.Context, records []T) (nts.BatchResult, error) {
	var res nts.BatchResult

	for start := 0; start < len(records); start += a.batchSize {
		end := min(start+a.batchSize, len(records))
		chunk := records[start:end]

		if err := ctx.Err(); err != nil {
			for _, rec := range records[start:] {
				res.Failures = append(res.Failures, nts.BatchFailure{ID: rec.RecordID(), Err: err})
			}
			return res, fmt.Errorf("saving %s batch: %w", a.codec.RecordType(), err)
		}

		wires := make([]model.WireRecord, len(chunk))
		for i, rec := range chunk {
			wires[i] = a.codec.ToWire(rec)
		}

		res.RoundTrips++
		failed, err := a.db.Modify(ctx, wires)
		if err != nil {
			a.logger.Warn("remote batch failed", "recordType", a.codec.RecordType(), "size", len(chunk), "error", err)
			for _, rec := range chunk {
				res.Failures = append(res.Failures, nts.BatchFailure{ID: rec.RecordID(), Err: err})
			}
			continue
		}

		failedNames := make(map[string]error, len(failed))
		for _, f := range failed {
			failedNames[f.Name] = f.Err
		}
		for _, rec := range chunk {
			if ferr, ok := failedNames[rec.RecordID()]; ok {
				res.Failures = append(res.Failures, nts.BatchFailure{ID: rec.RecordID(), Err: ferr})
				continue
			}
			res.Saved = append(res.Saved, rec.RecordID())
		}
	}

	return res, nil
}

func (a *Adapter[T]) Delete(ctx context.Context, id string) error {
	failed, err := a.db.Delete(ctx, a.codec.RecordType(), []string{id})
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", a.codec.RecordType(), id, err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("deleting %s: %w", a.codec.RecordType(), failed[0])
	}
	return nil
}

// DeleteAll fetches every record and deletes them in chunks. It stops at
// the first failed chunk; records deleted before that stay deleted.
func (a *Adapter[T]) DeleteAll(ctx context.Context) (int, error) {
	results, err := a.db.Query(ctx, a.codec.RecordType())
	if err != nil {
		return 0, fmt.Errorf("querying %s: %w", a.codec.RecordType(), err)
	}

	// Unreadable records are deleted too; they are still remote state.
	names := make([]string, 0, len(results))
	for _, res := range results {
		names = append(names, res.Name)
	}

	deleted := 0
	for start := 0; start < len(names); start += a.batchSize {
		end := min(start+a.batchSize, len(names))
		chunk := names[start:end]

		failed, err := a.db.Delete(ctx, a.codec.RecordType(), chunk)
		if err != nil {
			return deleted, fmt.Errorf("deleting %s records: %w", a.codec.RecordType(), err)
		}
		deleted += len(chunk) - len(failed)
		if len(failed) > 0 {
			return deleted, fmt.Errorf("deleting %s records: %d failed, first: %w", a.codec.RecordType(), len(failed), failed[0])
		}
	}
	return deleted, nil
}

// Compile-time check that Adapter implements nts.RemoteStore
var _ nts.RemoteStore[model.Note] = (*Adapter[model.Note])(nil)
