package ports

import "manifest-dispatcher/internal/features/manifest/domain"

// ManifestReader defines the interface for reading raw table data out of an
// uploaded manifest document. This is a Secondary Port (Driven Port).
type ManifestReader interface {
	// ReadPages returns the document pages in order, each with the table
	// regions found on it.
	ReadPages() ([]domain.Page, error)
}
