package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	"github.com/gitgeistai/gitgeist-ai/providers/contracts"
	"github.com/google/uuid"
)

// DefaultRecencyWindow bounds how many recent records a similarity scan
// considers. Recency over completeness.
const DefaultRecencyWindow = 50

// Service combines the durable store with the external embedding provider.
// Store writes are serialized through a single mutex; similarity reads go
// straight to the store and may race a write, which is acceptable for a
// suggestion store.
type Service struct {
	store    *SQLiteStore
	embedder contracts.IEmbeddingProvider
	window   int

	writeMu sync.Mutex
}

// NewService wires a store and an embedding provider. A window of 0 falls
// back to DefaultRecencyWindow.
func NewService(store *SQLiteStore, embedder contracts.IEmbeddingProvider, window int) *Service {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return &Service{store: store, embedder: embedder, window: window}
}

// NewProvisionalID returns a placeholder commit id, replaced later via
// upsert once a real hash is known.
func NewProvisionalID() string {
	return uuid.NewString()
}

// RecordCommit embeds and persists one commit. An empty id gets a
// provisional one. An embedding failure degrades to a no-op: the record is
// not stored, the failure is logged, and no error reaches the scheduler.
// A store write failure is returned to the caller.
func (s *Service) RecordCommit(ctx context.Context, id, summary string, filesChanged []string, changes map[string]models.SemanticChangeSet) error {
	if id == "" {
		id = NewProvisionalID()
	}

	changeSummary, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("failed to encode change summary: %w", err)
	}

	text := ChangeQueryText(summary, filesChanged, changes)
	embedding, err := s.embedder.EmbeddingRequest(ctx, text)
	if err != nil {
		log.Printf("Warning: embedding failed for commit %s, skipping memory write: %v", id, err)
		return nil
	}

	record := CommitRecord{
		ID:            id,
		Summary:       summary,
		FilesChanged:  filesChanged,
		ChangeSummary: string(changeSummary),
		Embedding:     embedding,
		Timestamp:     time.Now(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.UpsertCommit(ctx, record); err != nil {
		return fmt.Errorf("failed to store commit %s: %w", id, err)
	}
	return nil
}

// FindSimilar embeds the query text and ranks the recent window by cosine
// similarity, descending, ties broken by newer timestamp. An empty store, a
// zero-norm embedding, or an embedding failure all yield an empty result.
// No similarity threshold is applied here; that is the caller's concern.
func (s *Service) FindSimilar(ctx context.Context, queryText string, k int) ([]CommitRecord, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.EmbeddingRequest(ctx, queryText)
	if err != nil {
		log.Printf("Warning: embedding failed for similarity query: %v", err)
		return nil, nil
	}

	var norm float32
	for _, v := range queryVec {
		norm += v * v
	}
	if norm == 0 {
		return nil, nil
	}

	candidates, err := s.store.RecentCommits(ctx, s.window)
	if err != nil {
		return nil, err
	}

	var ranked []CommitRecord
	for _, record := range candidates {
		if len(record.Embedding) == 0 {
			continue
		}
		record.Similarity = cosineSimilarity(queryVec, record.Embedding)
		ranked = append(ranked, record)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		return ranked[i].Timestamp.After(ranked[j].Timestamp)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// RecordFileContext persists the structural context of one file after a
// successful extraction. Embedding failures degrade to a no-op, same as
// RecordCommit.
func (s *Service) RecordFileContext(ctx context.Context, snapshot *models.FileSnapshot, contentHash string) error {
	functions := snapshot.FunctionNames()
	classes := snapshot.ClassNames()

	text := fileContextText(snapshot.Path, functions, classes)
	embedding, err := s.embedder.EmbeddingRequest(ctx, text)
	if err != nil {
		log.Printf("Warning: embedding failed for file context %s, skipping memory write: %v", snapshot.Path, err)
		return nil
	}

	fc := FileContext{
		Path:        snapshot.Path,
		ContentHash: contentHash,
		Functions:   functions,
		Classes:     classes,
		Embedding:   embedding,
		LastUpdated: time.Now(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.UpsertFileContext(ctx, fc); err != nil {
		return fmt.Errorf("failed to store file context for %s: %w", snapshot.Path, err)
	}
	return nil
}

// FileContext returns the stored context for a path, or nil when unknown.
func (s *Service) FileContext(ctx context.Context, path string) (*FileContext, error) {
	return s.store.GetFileContext(ctx, path)
}

// Stats reports store counters for the stats command.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

// ChangeQueryText builds the text that represents a change for embedding:
// the summary, the first few files, and the first few added functions and
// classes. Stored records and retrieval queries go through the same builder
// so that identical changes embed identically.
func ChangeQueryText(summary string, filesChanged []string, changes map[string]models.SemanticChangeSet) string {
	var b strings.Builder
	b.WriteString(summary)

	if len(filesChanged) > 0 {
		b.WriteString(" | Files: ")
		b.WriteString(strings.Join(truncate(filesChanged, 5), ", "))
	}

	var functions, classes []string
	paths := make([]string, 0, len(changes))
	for path := range changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		functions = append(functions, changes[path].FunctionsAdded...)
		classes = append(classes, changes[path].ClassesAdded...)
	}

	if len(functions) > 0 {
		b.WriteString(" | Functions: ")
		b.WriteString(strings.Join(truncate(functions, 3), ", "))
	}
	if len(classes) > 0 {
		b.WriteString(" | Classes: ")
		b.WriteString(strings.Join(truncate(classes, 3), ", "))
	}
	return b.String()
}

func fileContextText(path string, functions, classes []string) string {
	return fmt.Sprintf("File: %s | Functions: %s | Classes: %s",
		path,
		strings.Join(truncate(functions, 10), ", "),
		strings.Join(truncate(classes, 5), ", "))
}

func truncate(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
