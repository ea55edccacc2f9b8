package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps text to a deterministic vector so that identical text
// always embeds identically. Explicit entries win over the derived vector.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) EmbeddingRequest(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	v := make([]float32, 8)
	for i, c := range []byte(text) {
		v[i%8] += float32(c)
	}
	return v, nil
}

func changesFor(path string, added ...string) map[string]models.SemanticChangeSet {
	return map[string]models.SemanticChangeSet{
		path: {FunctionsAdded: added},
	}
}

func TestService_RecordAndFindSimilar(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t), &stubEmbedder{}, 0)

	require.NoError(t, svc.RecordCommit(ctx, "c1", "add auth middleware", []string{"auth.py"}, changesFor("auth.py", "check_token")))
	require.NoError(t, svc.RecordCommit(ctx, "c2", "fix render crash", []string{"widget.py"}, changesFor("widget.py", "render")))
	require.NoError(t, svc.RecordCommit(ctx, "c3", "tune cache eviction", []string{"cache.py"}, changesFor("cache.py", "evict")))

	// Querying with the exact text of a stored change ranks it first with a
	// similarity of 1.
	query := ChangeQueryText("fix render crash", []string{"widget.py"}, changesFor("widget.py", "render"))
	results, err := svc.FindSimilar(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c2", results[0].ID)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-5)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestService_FindSimilarEmptyStore(t *testing.T) {
	svc := NewService(newTestStore(t), &stubEmbedder{}, 0)

	results, err := svc.FindSimilar(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestService_EmbeddingFailureIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewService(store, &stubEmbedder{err: errors.New("provider down")}, 0)

	// A failed embedding never surfaces as an error and never stores.
	require.NoError(t, svc.RecordCommit(ctx, "c1", "summary", []string{"a.py"}, nil))
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.CommitsStored)

	results, err := svc.FindSimilar(ctx, "query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestService_ZeroNormQueryYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	writer := NewService(store, &stubEmbedder{}, 0)
	require.NoError(t, writer.RecordCommit(ctx, "c1", "stored commit", []string{"a.py"}, nil))

	zero := &stubEmbedder{vectors: map[string][]float32{"query": {0, 0, 0}}}
	reader := NewService(store, zero, 0)
	results, err := reader.FindSimilar(ctx, "query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestService_TieBrokenByNewerTimestamp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Both summaries embed to the same vector, so similarity ties exactly
	// and the newer record must come first.
	same := []float32{1, 1, 0}
	stub := &stubEmbedder{vectors: map[string][]float32{
		ChangeQueryText("older", nil, nil): same,
		ChangeQueryText("newer", nil, nil): same,
		"query":                            same,
	}}
	svc := NewService(store, stub, 0)

	require.NoError(t, svc.RecordCommit(ctx, "older", "older", nil, nil))
	time.Sleep(15 * time.Millisecond)
	require.NoError(t, svc.RecordCommit(ctx, "newer", "newer", nil, nil))

	results, err := svc.FindSimilar(ctx, "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "newer", results[0].ID)
	assert.Equal(t, "older", results[1].ID)
}

func TestService_RecencyWindowBoundsCandidates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t), &stubEmbedder{}, 2)

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, svc.RecordCommit(ctx, id, id, nil, nil))
		time.Sleep(15 * time.Millisecond)
	}

	results, err := svc.FindSimilar(ctx, "anything", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "first", r.ID)
	}
}

func TestService_RecordFileContext(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t), &stubEmbedder{}, 0)

	snapshot := &models.FileSnapshot{
		Path:     "pkg/widget.py",
		Language: "python",
		Functions: []models.Declaration{
			{Name: "render", StartLine: 1, EndLine: 3},
		},
		Classes: []models.Declaration{
			{Name: "Widget", StartLine: 5, EndLine: 12},
		},
	}
	require.NoError(t, svc.RecordFileContext(ctx, snapshot, "00000000deadbeef"))

	fc, err := svc.FileContext(ctx, "pkg/widget.py")
	require.NoError(t, err)
	require.NotNil(t, fc)
	assert.Equal(t, "00000000deadbeef", fc.ContentHash)
	assert.Equal(t, []string{"render"}, fc.Functions)
	assert.Equal(t, []string{"Widget"}, fc.Classes)
	assert.NotEmpty(t, fc.Embedding)
}

func TestChangeQueryText(t *testing.T) {
	changes := map[string]models.SemanticChangeSet{
		"b.py": {FunctionsAdded: []string{"three", "four"}},
		"a.py": {FunctionsAdded: []string{"one", "two"}, ClassesAdded: []string{"C"}},
	}

	text := ChangeQueryText("short summary", []string{"a.py", "b.py"}, changes)
	// Paths iterate in sorted order, so a.py's names come first.
	assert.Equal(t, "short summary | Files: a.py, b.py | Functions: one, two, three | Classes: C", text)

	// Without files or changes the text is just the summary.
	assert.Equal(t, "bare", ChangeQueryText("bare", nil, nil))
}

func TestNewProvisionalID(t *testing.T) {
	a, b := NewProvisionalID(), NewProvisionalID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
