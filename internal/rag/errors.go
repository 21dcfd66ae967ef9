package rag

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when the query is blank after trimming.
	ErrEmptyQuery = errors.New("empty query")

	// ErrStoreUnavailable is returned when no document store is configured.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// RetrievalError reports a failed document store call.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve documents: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
