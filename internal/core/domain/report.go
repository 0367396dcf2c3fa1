package domain

// FileError records a single document-level ingestion failure.
type FileError struct {
	// Path is the file that failed.
	Path string

	// Err is the classified failure.
	Err error
}

// IngestReport summarises one ingestion run. Document-level failures are
// isolated and aggregated here; they never abort the run.
type IngestReport struct {
	// SourceID is the ingested source.
	SourceID string

	// Changed counts documents that were new or modified and committed.
	Changed int

	// Unchanged counts documents skipped because their checksum matched.
	Unchanged int

	// Deleted counts stored documents pruned because the crawl no longer
	// yielded them.
	Deleted int

	// Failed lists per-document failures.
	Failed []FileError
}
