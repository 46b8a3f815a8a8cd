// Package info holds the per-index and per-database counters reported by the service.
package info

// Index holds the counters of a single index.
// Pending documents are written but not yet searchable.
type Index struct {
	DocumentCount        int
	PendingDocumentCount int
}

// Database aggregates the counters of every index in a database.
type Database struct {
	DocumentCount        int
	PendingDocumentCount int
	DiskSizeBytes        int64
	Indexes              map[string]Index
}

// Settled reports whether every written document is searchable.
func (d Database) Settled() bool { return d.PendingDocumentCount == 0 }
