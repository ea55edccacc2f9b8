// Package memory persists commit history and per-file context, and answers
// nearest-neighbor similarity queries over stored embeddings.
package memory

import "time"

// CommitRecord is one persisted unit of commit history. Records are
// immutable once written except for whole-record replacement by id, used
// when a provisional id is later swapped for a real commit hash.
type CommitRecord struct {
	ID            string
	Summary       string
	FilesChanged  []string
	ChangeSummary string
	Embedding     []float32
	Timestamp     time.Time

	// Similarity is only populated on records returned from FindSimilar.
	Similarity float32
}

// FileContext is the stored structural context for one file, keyed by path.
type FileContext struct {
	Path        string
	ContentHash string
	Functions   []string
	Classes     []string
	Embedding   []float32
	LastUpdated time.Time
}

// Stats summarizes the state of the memory database.
type Stats struct {
	CommitsStored int
	FilesTracked  int
	DBSizeBytes   int64
}
