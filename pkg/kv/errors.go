package kv

import (
	"errors"
	"fmt"
)

// Kind classifies storage failures. The persistence layer branches on kinds:
// quota failures are recoverable by pruning backups, parse failures by
// falling back to snapshots, write failures are surfaced as-is.
type Kind string

const (
	// KindQuota means the store rejected a write for space reasons.
	KindQuota Kind = "quota_exceeded"
	// KindParse means stored bytes were not valid JSON.
	KindParse Kind = "parse_error"
	// KindWrite covers any other write failure. Not retried.
	KindWrite Kind = "write_error"
	// KindUnavailable means the store cannot be used at all.
	KindUnavailable Kind = "unavailable"
)

// Error is a coded storage error carrying the key it concerns.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Key != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s (%s): %v", e.Kind, e.Key, e.Err)
		}
		return fmt.Sprintf("%s (%s)", e.Kind, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError creates a coded error for a key with an optional cause.
func NewError(kind Kind, key string, cause error) error {
	return &Error{Kind: kind, Key: key, Err: cause}
}

// KindOf extracts the error kind, defaulting to write_error for uncoded
// failures so callers never retry them by accident.
func KindOf(err error) Kind {
	var coded *Error
	if errors.As(err, &coded) && coded.Kind != "" {
		return coded.Kind
	}
	return KindWrite
}

// IsQuota reports whether the error is a space rejection.
func IsQuota(err error) bool {
	return errorKindIs(err, KindQuota)
}

// IsParse reports whether the error is malformed or schema-invalid data.
func IsParse(err error) bool {
	return errorKindIs(err, KindParse)
}

func errorKindIs(err error, kind Kind) bool {
	var coded *Error
	return errors.As(err, &coded) && coded.Kind == kind
}
