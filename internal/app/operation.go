package app

import (
	"time"
)

// Operation tracks the CLI command being run. Its ID tags every log line
// written during the command.
type Operation struct {
	ID         string
	Name       string
	Parameters string
	Status     string // "success" or "error"
	StartedAt  time.Time
}

// NewOperation creates an operation that started at the given time.
func NewOperation(name, parameters string, startedAt time.Time) *Operation {
	return &Operation{
		ID:         startedAt.UTC().Format("20060102T150405Z"),
		Name:       name,
		Parameters: parameters,
		Status:     "success",
		StartedAt:  startedAt,
	}
}

// Fail marks the operation as failed. A nil error leaves it unchanged.
func (op *Operation) Fail(err error) {
	if err != nil {
		op.Status = "error"
	}
}

// Failed returns true if Fail was called with an error.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
