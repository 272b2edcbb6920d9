package cloud

import (
	"context"
	"errors"

	"nts-go/internal/model"
)

// ErrUnavailable is returned by AccountStatus when the remote cannot be used.
var ErrUnavailable = errors.New("remote unavailable")

// Database is the remote record service. Records are grouped by record type
// and identified by record name.
type Database interface {
	// AccountStatus returns nil when the account is usable.
	AccountStatus(ctx context.Context) error

	// Query returns every record of recordType. A record that cannot be read
	// is reported in its QueryResult without failing the others.
	Query(ctx context.Context, recordType string) ([]QueryResult, error)

	// Modify saves records in one round-trip. At most nts.MaxBatchSize
	// records are accepted per call. Per-record failures are returned;
	// the error result means the whole call failed.
	Modify(ctx context.Context, records []model.WireRecord) ([]RecordError, error)

	// Delete removes records by name. Absent names are not an error.
	Delete(ctx context.Context, recordType string, names []string) ([]RecordError, error)
}

// QueryResult is one record returned by Query, or the reason it could not
// be read.
type QueryResult struct {
	Name   string
	Record model.WireRecord
	Err    error
}

// RecordError is a per-record failure from Modify or Delete.
type RecordError struct {
	Name string
	Err  error
}

func (e RecordError) Error() string { return e.Name + ": " + e.Err.Error() }
func (e RecordError) Unwrap() error { return e.Err }
