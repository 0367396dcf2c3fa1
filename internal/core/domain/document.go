package domain

import "time"

// Document is one ingested file at a point in time.
// (SourceID, Path) is the natural de-duplication key: re-ingesting the same
// path under the same source updates the existing document in place.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceID links to the Source that produced this document.
	SourceID string

	// CollectionID is denormalised from the owning source so scoped
	// retrieval never needs a join. Set once at insertion.
	CollectionID string

	// Path is the file path within the source repository.
	Path string

	// Checksum is a fast, non-cryptographic fingerprint of the raw bytes,
	// used only for change detection.
	Checksum uint32

	// TokensLen is the token count of the full document body before
	// chunking. Used for reporting and backend limits only.
	TokensLen int

	// Data is the full text content.
	Data string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk is one token-bounded, independently embeddable slice of a document.
// Chunks never outlive their document version: replacing a document deletes
// its prior chunks in the same transaction that inserts the new ones.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// SourceID is denormalised from the parent document.
	SourceID string

	// CollectionID is denormalised from the parent document.
	CollectionID string

	// ChunkIndex is the ordinal position within the document,
	// contiguous from 0.
	ChunkIndex int

	// Context carries the document path and nearest enclosing heading so
	// the chunk is interpretable outside its document.
	Context string

	// Data is the chunk text.
	Data string

	// Vector is the embedding produced by the backend. Fixed length
	// within one deployment.
	Vector []float32
}
