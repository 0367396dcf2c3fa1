// Package domain contains the core entities of the ingestion and retrieval
// pipeline: collections, sources, documents and chunks, plus the error
// taxonomy shared by services and adapters.
package domain
