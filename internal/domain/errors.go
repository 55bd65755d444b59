package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrMalformedRecord     = errors.New("malformed record")
	ErrInvalidChunkSize    = errors.New("chunk size must be a positive integer")
	ErrPackagingValidation = errors.New("packaging validation failed")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// MalformedRecordError reports a term bank record that does not follow the
// 8-field positional layout.
type MalformedRecordError struct {
	Source string // file the record came from, if known
	Index  int    // zero-based position of the record in Source
	Term   string // decoded term, empty when the term itself is unreadable
	Reason string
}

func (e *MalformedRecordError) Error() string {
	where := fmt.Sprintf("record %d", e.Index)
	if e.Source != "" {
		where = fmt.Sprintf("%s: record %d", e.Source, e.Index)
	}
	if e.Term != "" {
		return fmt.Sprintf("malformed record: %s (term %q): %s", where, e.Term, e.Reason)
	}
	return fmt.Sprintf("malformed record: %s: %s", where, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// PackagingError describes why a produced dictionary directory cannot be imported.
type PackagingError struct {
	File   string
	Reason string
}

func (e *PackagingError) Error() string {
	if e.File == "" {
		return "packaging validation: " + e.Reason
	}
	return fmt.Sprintf("packaging validation: %s: %s", e.File, e.Reason)
}

func (e *PackagingError) Unwrap() error { return ErrPackagingValidation }
