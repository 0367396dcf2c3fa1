package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/repovec/repovec/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/repovec/repovec/internal/core/domain"
	"github.com/repovec/repovec/internal/core/ports/driven"
)

// setSeparator joins set-valued source columns into a single TEXT column.
const setSeparator = ";"

// Store is a unified SQLite-based storage that provides access to
// all catalog store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.repovec/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".repovec", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CollectionStore returns a CollectionStore interface backed by this store.
func (s *Store) CollectionStore() driven.CollectionStore {
	return &collectionStore{store: s}
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Collection Store ====================

// collectionStore implements driven.CollectionStore.
type collectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*collectionStore)(nil)

// Save stores or updates a collection.
func (s *collectionStore) Save(ctx context.Context, collection domain.Collection) error {
	now := time.Now().UTC()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = now
	}
	collection.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO collections (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`, collection.ID, collection.Name, collection.CreatedAt, collection.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}
	return nil
}

// Get retrieves a collection by ID.
func (s *collectionStore) Get(ctx context.Context, id string) (*domain.Collection, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM collections WHERE id = ?
	`, id)

	var collection domain.Collection
	if err := row.Scan(&collection.ID, &collection.Name,
		&collection.CreatedAt, &collection.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	return &collection, nil
}

// List returns all collections.
func (s *collectionStore) List(ctx context.Context) ([]domain.Collection, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM collections ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var collections []domain.Collection //nolint:prealloc // size unknown from query
	for rows.Next() {
		var collection domain.Collection
		if err := rows.Scan(&collection.ID, &collection.Name,
			&collection.CreatedAt, &collection.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, collection)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	return collections, nil
}

// Delete removes an empty collection.
func (s *collectionStore) Delete(ctx context.Context, id string) error {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sources WHERE collection_id = ?", id).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking collection usage: %w", err)
	}
	if count > 0 {
		return domain.ErrCollectionNotEmpty
	}

	result, err := s.store.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources
			(id, collection_id, owner, repo, branch, allowed_ext, allowed_dirs, ignored_dirs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection_id = excluded.collection_id,
			owner = excluded.owner,
			repo = excluded.repo,
			branch = excluded.branch,
			allowed_ext = excluded.allowed_ext,
			allowed_dirs = excluded.allowed_dirs,
			ignored_dirs = excluded.ignored_dirs,
			updated_at = excluded.updated_at
	`, source.ID, source.CollectionID, source.Owner, source.Repo, source.Branch,
		joinSet(source.AllowedExt), joinSet(source.AllowedDirs), joinSet(source.IgnoredDirs),
		source.CreatedAt, source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, collection_id, owner, repo, branch, allowed_ext, allowed_dirs, ignored_dirs, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return source, nil
}

// ListByCollection returns all sources in a collection.
func (s *sourceStore) ListByCollection(ctx context.Context, collectionID string) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, collection_id, owner, repo, branch, allowed_ext, allowed_dirs, ignored_dirs, created_at, updated_at
		FROM sources WHERE collection_id = ?
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	return scanSources(rows)
}

// List returns all configured sources.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, collection_id, owner, repo, branch, allowed_ext, allowed_dirs, ignored_dirs, created_at, updated_at
		FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	return scanSources(rows)
}

// Delete removes a source. Documents and chunks cascade through the
// schema's foreign keys.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// ReplaceDocument atomically commits a document body and its chunks. An
// existing row at the same (source_id, path) keeps its ID and creation
// time; its chunks are deleted and rewritten inside the same transaction.
func (s *documentStore) ReplaceDocument(
	ctx context.Context, doc domain.Document, chunks []domain.Chunk,
) (*domain.Document, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existingID string
	var createdAt time.Time
	row := tx.QueryRowContext(ctx,
		"SELECT id, created_at FROM documents WHERE source_id = ? AND path = ?",
		doc.SourceID, doc.Path)
	switch err := row.Scan(&existingID, &createdAt); {
	case err == nil:
		doc.ID = existingID
		doc.CreatedAt = createdAt
	case errors.Is(err, sql.ErrNoRows):
		// First commit of this path.
	default:
		return nil, fmt.Errorf("resolving document id: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents
			(id, source_id, collection_id, path, checksum, tokens_len, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection_id = excluded.collection_id,
			checksum = excluded.checksum,
			tokens_len = excluded.tokens_len,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, doc.ID, doc.SourceID, doc.CollectionID, doc.Path,
		int64(doc.Checksum), doc.TokensLen, doc.Data, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return nil, fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, source_id, collection_id, chunk_index, context, data, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		chunk.DocumentID = doc.ID
		embeddingBlob := float32SliceToBytes(chunk.Vector)
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.SourceID,
			chunk.CollectionID, chunk.ChunkIndex, chunk.Context, chunk.Data, embeddingBlob); err != nil {
			return nil, fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &doc, nil
}

// GetByPath retrieves a document by its natural key.
func (s *documentStore) GetByPath(ctx context.Context, sourceID, path string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_id, collection_id, path, checksum, tokens_len, data, created_at, updated_at
		FROM documents WHERE source_id = ? AND path = ?
	`, sourceID, path)

	return scanDocumentRow(row)
}

// ListBySource returns all documents for a source.
func (s *documentStore) ListBySource(ctx context.Context, sourceID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_id, collection_id, path, checksum, tokens_len, data, created_at, updated_at
		FROM documents WHERE source_id = ? ORDER BY path
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes a document, cascading to its chunks.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePathsNotIn removes every document of the source whose path is not
// in keep, cascading to chunks.
func (s *documentStore) DeletePathsNotIn(ctx context.Context, sourceID string, keep []string) (int, error) {
	query := "DELETE FROM documents WHERE source_id = ?"
	args := make([]any, 0, len(keep)+1)
	args = append(args, sourceID)

	if len(keep) > 0 {
		query += " AND path NOT IN (?" + strings.Repeat(", ?", len(keep)-1) + ")"
		for _, path := range keep {
			args = append(args, path)
		}
	}

	result, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning documents: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning documents: %w", err)
	}
	return int(affected), nil
}

// ChunksByDocument returns a document's chunks ordered by chunk_index.
func (s *documentStore) ChunksByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, source_id, collection_id, chunk_index, context, data, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// ChunksByScope returns every chunk inside the scope, relying on the
// denormalised source_id/collection_id columns.
func (s *documentStore) ChunksByScope(ctx context.Context, scope domain.SearchScope) ([]domain.Chunk, error) {
	query := `
		SELECT id, document_id, source_id, collection_id, chunk_index, context, data, embedding
		FROM chunks WHERE 1 = 1
	`
	var args []any
	if scope.CollectionID != "" {
		query += " AND collection_id = ?"
		args = append(args, scope.CollectionID)
	}
	if scope.SourceID != "" {
		query += " AND source_id = ?"
		args = append(args, scope.SourceID)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks by scope: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// ==================== Helper Functions ====================

// joinSet serialises a set-valued column.
func joinSet(values []string) string {
	return strings.Join(values, setSeparator)
}

// splitSet deserialises a set-valued column.
func splitSet(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, setSeparator)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanSource scans a single source row.
func scanSource(row *sql.Row) (*domain.Source, error) {
	var source domain.Source
	var allowedExt, allowedDirs, ignoredDirs string
	if err := row.Scan(&source.ID, &source.CollectionID, &source.Owner, &source.Repo,
		&source.Branch, &allowedExt, &allowedDirs, &ignoredDirs,
		&source.CreatedAt, &source.UpdatedAt); err != nil {
		return nil, err
	}

	source.AllowedExt = splitSet(allowedExt)
	source.AllowedDirs = splitSet(allowedDirs)
	source.IgnoredDirs = splitSet(ignoredDirs)
	return &source, nil
}

// scanSources scans multiple source rows.
func scanSources(rows *sql.Rows) ([]domain.Source, error) {
	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		var source domain.Source
		var allowedExt, allowedDirs, ignoredDirs string
		if err := rows.Scan(&source.ID, &source.CollectionID, &source.Owner, &source.Repo,
			&source.Branch, &allowedExt, &allowedDirs, &ignoredDirs,
			&source.CreatedAt, &source.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		source.AllowedExt = splitSet(allowedExt)
		source.AllowedDirs = splitSet(allowedDirs)
		source.IgnoredDirs = splitSet(ignoredDirs)
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// scanDocumentRow scans a document from *sql.Row.
func scanDocumentRow(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var checksum int64
	if err := row.Scan(&doc.ID, &doc.SourceID, &doc.CollectionID, &doc.Path,
		&checksum, &doc.TokensLen, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Checksum = uint32(checksum)
	return &doc, nil
}

// scanDocument scans a document from *sql.Rows.
func scanDocument(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var checksum int64
	if err := rows.Scan(&doc.ID, &doc.SourceID, &doc.CollectionID, &doc.Path,
		&checksum, &doc.TokensLen, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Checksum = uint32(checksum)
	return &doc, nil
}

// scanChunks scans multiple chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SourceID,
			&chunk.CollectionID, &chunk.ChunkIndex, &chunk.Context, &chunk.Data,
			&embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Vector = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}
