package domain

import "time"

// Collection is a named grouping of ingestion sources.
// Retrieval queries can be scoped to a single collection.
type Collection struct {
	// ID is the unique identifier for the collection.
	ID string

	// Name is the human-readable name. Not required to be unique,
	// but indexed for lookup.
	Name string

	// CreatedAt is when the collection was created.
	CreatedAt time.Time

	// UpdatedAt is when the collection was last updated.
	UpdatedAt time.Time
}
