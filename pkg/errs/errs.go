package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can pick a fallback without
// string-matching error text.
type Kind string

const (
	// KindProvider covers unreachable/malformed/quota failures of the
	// capability provider after its own retries are exhausted.
	KindProvider Kind = "provider"
	// KindParse covers structured output that does not match the
	// requested schema.
	KindParse Kind = "parse"
	// KindIndexing covers chunking or embedding failures while adding a
	// document to the vector store.
	KindIndexing Kind = "indexing"
	// KindDataQuery covers generated data queries that fail to execute.
	KindDataQuery Kind = "data_query"
	// KindNotFound covers document/job lookup misses.
	KindNotFound Kind = "not_found"
)

// Error carries a kind alongside the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a kinded error without a cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
