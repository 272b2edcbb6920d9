package nts

import "context"

// MaxBatchSize is the most records the remote service accepts in one
// modify round-trip.
const MaxBatchSize = 400

// RemoteStore is the adapter over the remote record database for one
// record type. Implementations must be safe for concurrent use.
type RemoteStore[T any] interface {
	// IsAvailable probes account status. Any probe error reads as unavailable.
	IsAvailable(ctx context.Context) bool

	// FetchAll returns every record sorted by date descending. Records that
	// fail to decode are skipped.
	FetchAll(ctx context.Context) ([]T, error)

	// Save upserts a single record by id.
	Save(ctx context.Context, record T) error

	// SaveBatch upserts records in chunks of at most MaxBatchSize. A failing
	// record does not abort its siblings or later chunks; failures are
	// reported in the result.
	SaveBatch(ctx context.Context, records []T) (BatchResult, error)

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error

	// DeleteAll fetches every record and deletes each one. It is not atomic:
	// on error some records may already be gone. Returns the number deleted.
	DeleteAll(ctx context.Context) (int, error)
}

// BatchFailure is one record that a batch save could not write.
type BatchFailure struct {
	ID  string
	Err error
}

// BatchResult reports the outcome of a SaveBatch call.
type BatchResult struct {
	Saved      []string
	Failures   []BatchFailure
	RoundTrips int
}

// OK reports whether every record was saved.
func (r BatchResult) OK() bool { return len(r.Failures) == 0 }
