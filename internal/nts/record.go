package nts

import "time"

// Record is the constraint satisfied by every synchronized record type.
// Methods with a T result return an updated copy; records are values.
type Record[T any] interface {
	RecordID() string
	Created() time.Time
	Modified() time.Time

	// WithIdentity fills in whichever of id, date and lastModified are unset.
	WithIdentity(id string, at time.Time) T

	// Touched sets lastModified.
	Touched(at time.Time) T

	Validate() error
}
