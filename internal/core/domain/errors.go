package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCollectionNotEmpty indicates a collection cannot be deleted
	// because sources still belong to it. Deletion order is the caller's
	// responsibility.
	ErrCollectionNotEmpty = errors.New("collection still has sources")
)

// ChunkingError indicates a document could not be split: invalid chunking
// configuration or text that is not valid for the tokenisation scheme.
// Fatal to the one document, never to the run.
type ChunkingError struct {
	Reason string
}

func (e *ChunkingError) Error() string {
	return "chunking: " + e.Reason
}

// EmbeddingError classifies an embedding backend failure.
// Transient failures (timeouts, rate limits, 5xx) are retried with backoff;
// permanent ones (malformed input, auth rejection) are not.
type EmbeddingError struct {
	Transient bool
	Err       error
}

func (e *EmbeddingError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("embedding (%s): %v", kind, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// StorageError indicates a catalog transaction failed. The document is left
// in its prior committed state and the run continues.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ScopeError indicates a retrieval scope referencing a missing collection or
// source, or no scope at all. Surfaced to the caller immediately.
type ScopeError struct {
	Reason string
}

func (e *ScopeError) Error() string {
	return "scope: " + e.Reason
}

// FilterConfigError indicates a source's path-filtering rules cannot be
// evaluated. Fatal to the whole source's run.
type FilterConfigError struct {
	SourceID string
	Rule     string
	Reason   string
}

func (e *FilterConfigError) Error() string {
	return fmt.Sprintf("filter config (%s, source %s): %s", e.Rule, e.SourceID, e.Reason)
}
