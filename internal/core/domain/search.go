package domain

// SearchScope restricts a retrieval query to a collection and/or a source.
// At least one of the two must be set.
type SearchScope struct {
	// CollectionID scopes to one collection. Empty means unscoped by
	// collection.
	CollectionID string

	// SourceID scopes to one source. Empty means unscoped by source.
	SourceID string
}

// Empty reports whether no scope was supplied.
func (s SearchScope) Empty() bool {
	return s.CollectionID == "" && s.SourceID == ""
}

// ScoredChunk pairs a chunk with its similarity score for one query.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity between the query vector and the
	// chunk's stored vector.
	Score float32
}
