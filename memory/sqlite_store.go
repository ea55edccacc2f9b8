package memory

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable backend for commit records and file context.
// Writes are serialized by the owning Service; reads may run concurrently
// with a write and are allowed to miss a still-in-flight record.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at dbPath and verifies
// connectivity. WAL mode keeps similarity reads from blocking upserts.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// InitSchema creates the two durable tables if they don't exist: commit
// records keyed by id, file context keyed by path.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS commits (
			id TEXT PRIMARY KEY,
			summary TEXT NOT NULL,
			files_changed TEXT NOT NULL,
			change_summary TEXT,
			embedding BLOB,
			timestamp INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_commits_timestamp ON commits(timestamp DESC);

		CREATE TABLE IF NOT EXISTS file_context (
			path TEXT PRIMARY KEY,
			content_hash TEXT,
			functions TEXT,
			classes TEXT,
			embedding BLOB,
			last_updated INTEGER NOT NULL
		);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// UpsertCommit writes a commit record, replacing any existing record with
// the same id. Last write wins; the store never duplicates an id.
func (s *SQLiteStore) UpsertCommit(ctx context.Context, record CommitRecord) error {
	files, err := json.Marshal(record.FilesChanged)
	if err != nil {
		return fmt.Errorf("failed to encode files for commit %s: %w", record.ID, err)
	}

	query := `
		INSERT INTO commits (id, summary, files_changed, change_summary, embedding, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			summary = excluded.summary,
			files_changed = excluded.files_changed,
			change_summary = excluded.change_summary,
			embedding = excluded.embedding,
			timestamp = excluded.timestamp
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.Summary,
		string(files),
		record.ChangeSummary,
		encodeVector(record.Embedding),
		record.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert commit %s: %w", record.ID, err)
	}
	return nil
}

// RecentCommits returns up to window records ordered newest first. This is
// the bounded candidate set for similarity scans: recency over completeness.
func (s *SQLiteStore) RecentCommits(ctx context.Context, window int) ([]CommitRecord, error) {
	query := `
		SELECT id, summary, files_changed, change_summary, embedding, timestamp
		FROM commits
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var records []CommitRecord
	for rows.Next() {
		record, err := scanCommit(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commits: %w", err)
	}
	return records, nil
}

// GetCommit looks up one record by id. A missing id returns (nil, nil).
func (s *SQLiteStore) GetCommit(ctx context.Context, id string) (*CommitRecord, error) {
	query := `
		SELECT id, summary, files_changed, change_summary, embedding, timestamp
		FROM commits
		WHERE id = ?
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	record, err := scanCommit(rows)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func scanCommit(rows *sql.Rows) (CommitRecord, error) {
	var record CommitRecord
	var files string
	var changeSummary sql.NullString
	var embedding []byte
	var timestamp int64

	if err := rows.Scan(&record.ID, &record.Summary, &files, &changeSummary, &embedding, &timestamp); err != nil {
		return CommitRecord{}, fmt.Errorf("failed to scan commit: %w", err)
	}

	if err := json.Unmarshal([]byte(files), &record.FilesChanged); err != nil {
		return CommitRecord{}, fmt.Errorf("failed to decode files for commit %s: %w", record.ID, err)
	}
	record.ChangeSummary = changeSummary.String
	record.Embedding = decodeVector(embedding)
	record.Timestamp = time.UnixMilli(timestamp)
	return record, nil
}

// UpsertFileContext writes the stored context for a path, replacing any
// previous row.
func (s *SQLiteStore) UpsertFileContext(ctx context.Context, fc FileContext) error {
	functions, err := json.Marshal(fc.Functions)
	if err != nil {
		return fmt.Errorf("failed to encode functions for %s: %w", fc.Path, err)
	}
	classes, err := json.Marshal(fc.Classes)
	if err != nil {
		return fmt.Errorf("failed to encode classes for %s: %w", fc.Path, err)
	}

	query := `
		INSERT INTO file_context (path, content_hash, functions, classes, embedding, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			functions = excluded.functions,
			classes = excluded.classes,
			embedding = excluded.embedding,
			last_updated = excluded.last_updated
	`

	_, err = s.db.ExecContext(ctx, query,
		fc.Path,
		fc.ContentHash,
		string(functions),
		string(classes),
		encodeVector(fc.Embedding),
		fc.LastUpdated.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert file context for %s: %w", fc.Path, err)
	}
	return nil
}

// GetFileContext looks up the stored context for a path. A missing path
// returns (nil, nil).
func (s *SQLiteStore) GetFileContext(ctx context.Context, path string) (*FileContext, error) {
	query := `
		SELECT path, content_hash, functions, classes, embedding, last_updated
		FROM file_context
		WHERE path = ?
	`

	row := s.db.QueryRowContext(ctx, query, path)

	var fc FileContext
	var contentHash sql.NullString
	var functions, classes string
	var embedding []byte
	var lastUpdated int64

	err := row.Scan(&fc.Path, &contentHash, &functions, &classes, &embedding, &lastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan file context for %s: %w", path, err)
	}

	if err := json.Unmarshal([]byte(functions), &fc.Functions); err != nil {
		return nil, fmt.Errorf("failed to decode functions for %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(classes), &fc.Classes); err != nil {
		return nil, fmt.Errorf("failed to decode classes for %s: %w", path, err)
	}
	fc.ContentHash = contentHash.String
	fc.Embedding = decodeVector(embedding)
	fc.LastUpdated = time.UnixMilli(lastUpdated)
	return &fc, nil
}

// Stats reports row counts and the database file size.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commits`).Scan(&stats.CommitsStored); err != nil {
		return Stats{}, fmt.Errorf("failed to count commits: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_context`).Scan(&stats.FilesTracked); err != nil {
		return Stats{}, fmt.Errorf("failed to count file context: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.DBSizeBytes = info.Size()
	}
	return stats, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeVector converts a float32 slice to little-endian bytes for storage.
func encodeVector(v []float32) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector converts stored bytes back to a float32 slice.
func decodeVector(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// cosineSimilarity returns the normalized dot product of two vectors in
// [-1, 1]. Mismatched lengths or a zero-norm vector score 0 rather than NaN.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
