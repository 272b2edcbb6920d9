package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRecord is returned by Validate for records missing required fields.
var ErrInvalidRecord = errors.New("invalid record")

// Meta holds the identity and timestamps shared by every record type.
// It is embedded so its fields serialize flat alongside the content fields.
type Meta struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	LastModified time.Time `json:"lastModified"`
}

// RecordID returns the record's identity key.
func (m Meta) RecordID() string { return m.ID }

// Created returns the creation timestamp.
func (m Meta) Created() time.Time { return m.Date }

// Modified returns the last-modified timestamp.
func (m Meta) Modified() time.Time { return m.LastModified }

// Validate reports whether the record carries a UUID id and a creation date.
// The remote names records by id and skips any that are not UUIDs.
func (m Meta) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("%w: id %q is not a UUID", ErrInvalidRecord, m.ID)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("%w: record %s missing date", ErrInvalidRecord, m.ID)
	}
	return nil
}

// stamped fills in whichever of id, date and lastModified are unset.
func (m Meta) stamped(id string, at time.Time) Meta {
	if m.ID == "" {
		m.ID = id
	}
	if m.Date.IsZero() {
		m.Date = at
	}
	if m.LastModified.IsZero() {
		m.LastModified = m.Date
	}
	return m
}

func (m Meta) touched(at time.Time) Meta {
	m.LastModified = at
	return m
}

// modifiedOrDate implements the backward-compatible default for data written
// before lastModified existed: an absent value falls back to the creation date.
func modifiedOrDate(lastModified *time.Time, date time.Time) time.Time {
	if lastModified == nil || lastModified.IsZero() {
		return date
	}
	return *lastModified
}
