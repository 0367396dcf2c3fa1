// Package sqlite provides a unified SQLite-based implementation of the
// catalog store interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements multiple
// store interfaces through a single database connection:
//
//   - CollectionStore: Collection persistence
//   - SourceStore: Source configuration persistence
//   - DocumentStore: Document and chunk persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Embedding vectors are stored as little-endian
// float32 BLOBs; set-valued source columns are stored as ';'-joined strings.
//
// # Data Location
//
// By default, the database is stored at ~/.repovec/data/catalog.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
