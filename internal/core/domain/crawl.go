package domain

// CrawledFile is one file yielded by a crawler, before filtering.
// Paths are relative to the repository root and use forward slashes.
type CrawledFile struct {
	// Path is the repository-relative file path.
	Path string

	// Data is the raw file content.
	Data []byte
}
