// Package watch turns raw file events into debounced analysis batches: it
// owns the snapshot cache, the pending set, and the scheduler that decides
// when a batch drains through the extractor and diff engine.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gitgeistai/gitgeist-ai/analysis"
	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	"github.com/sourcegraph/conc/pool"
	"github.com/zeebo/xxh3"
)

// EventKind classifies a file event.
type EventKind int

const (
	EventCreated EventKind = iota
	EventModified
	EventDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one file-change notification.
type Event struct {
	Path string
	Kind EventKind
}

// FileChange is the analysis result for one path in a drained batch.
type FileChange struct {
	Path     string
	Language string
	Changes  models.SemanticChangeSet
}

// BatchFunc receives the results of one drained batch.
type BatchFunc func(changes []FileChange)

// SnapshotFunc is called after a snapshot is committed to the cache, with
// the content hash of the extracted source.
type SnapshotFunc func(snapshot *models.FileSnapshot, contentHash string)

// Options configures an Aggregator.
type Options struct {
	// QuietPeriod is the debounce window T. Zero means DefaultQuietPeriod.
	QuietPeriod time.Duration
	// Workers bounds the extraction pool for one drain. Zero means 4.
	Workers int
	// Synchronous selects the manual scheduler: events are recorded but
	// batches drain only on explicit Analyze calls.
	Synchronous bool
	// OnBatch receives drained batches (timer mode only).
	OnBatch BatchFunc
	// OnSnapshot, if set, is called for every committed snapshot.
	OnSnapshot SnapshotFunc
}

// Aggregator is the stateful scheduler between the event source and the
// extractor/diff pair. It is the sole owner of the snapshot cache and the
// pending set; batch drains take the pending set atomically so no event can
// be lost between read and clear.
type Aggregator struct {
	extractor *analysis.Extractor
	sched     Scheduler
	workers   int

	onBatch    BatchFunc
	onSnapshot SnapshotFunc

	mu        sync.Mutex
	snapshots map[string]*models.FileSnapshot
	hashes    map[string]uint64
	pending   map[string]struct{}
	lastEvent time.Time
}

// NewAggregator builds an aggregator with the scheduling strategy chosen at
// construction time.
func NewAggregator(extractor *analysis.Extractor, opts Options) *Aggregator {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	a := &Aggregator{
		extractor:  extractor,
		workers:    workers,
		onBatch:    opts.OnBatch,
		onSnapshot: opts.OnSnapshot,
		snapshots:  make(map[string]*models.FileSnapshot),
		hashes:     make(map[string]uint64),
		pending:    make(map[string]struct{}),
	}

	if opts.Synchronous {
		a.sched = ManualScheduler{}
	} else {
		a.sched = NewTimerScheduler(opts.QuietPeriod, a.drain)
	}
	return a
}

// Observe records one file event. Create and modify events join the pending
// set and refresh the quiet timer; already-pending paths are deduplicated.
// Delete events bypass debouncing entirely: the cached snapshot is evicted
// immediately since there is nothing further to extract.
func (a *Aggregator) Observe(ev Event) {
	if ev.Kind == EventDeleted {
		a.mu.Lock()
		delete(a.snapshots, ev.Path)
		delete(a.hashes, ev.Path)
		delete(a.pending, ev.Path)
		a.mu.Unlock()
		log.Printf("File deleted: %s (snapshot evicted)", ev.Path)
		return
	}

	a.mu.Lock()
	a.pending[ev.Path] = struct{}{}
	a.lastEvent = time.Now()
	a.mu.Unlock()

	log.Printf("File %s: %s", ev.Kind, ev.Path)
	a.sched.Reset()
}

// drain is the timer callback: it analyzes the pending set and hands the
// results to the batch callback.
func (a *Aggregator) drain() {
	changes := a.Analyze(context.Background())
	if len(changes) > 0 && a.onBatch != nil {
		a.onBatch(changes)
	}
}

// Analyze drains the entire pending set as one atomic unit and runs
// extraction plus diff for every path in it. Events arriving during the
// drain land in the next batch. In synchronous mode this is the explicit
// "analyze now" entry point.
func (a *Aggregator) Analyze(ctx context.Context) []FileChange {
	a.mu.Lock()
	paths := make([]string, 0, len(a.pending))
	for path := range a.pending {
		paths = append(paths, path)
	}
	a.pending = make(map[string]struct{})
	a.mu.Unlock()

	return a.AnalyzeBatch(ctx, paths)
}

// AnalyzeBatch analyzes an explicit set of paths against the snapshot
// cache. A failure for one path never aborts the rest of the batch.
func (a *Aggregator) AnalyzeBatch(ctx context.Context, paths []string) []FileChange {
	if len(paths) == 0 {
		return nil
	}

	p := pool.NewWithResults[*FileChange]().WithMaxGoroutines(a.workers)
	for _, path := range paths {
		path := path
		p.Go(func() *FileChange {
			return a.analyzePath(ctx, path)
		})
	}

	var changes []FileChange
	for _, result := range p.Wait() {
		if result != nil {
			changes = append(changes, *result)
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// analyzePath runs the extract-then-diff pipeline for one file. A nil
// result means there was nothing to report this cycle: unsupported
// language, unchanged content, or a parse failure (in which case the prior
// snapshot is retained, never treated as a deletion).
func (a *Aggregator) analyzePath(ctx context.Context, path string) *FileChange {
	source, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: cannot read %s, skipping this cycle: %v", path, err)
		return nil
	}

	language := analysis.DetectLanguage(path, analysis.FirstLine(source))
	if language == "" || !a.extractor.Supported(language) {
		// Not an error: non-code and unsupported files are a normal result.
		return nil
	}

	hash := xxh3.Hash(source)
	a.mu.Lock()
	prevHash, seen := a.hashes[path]
	a.mu.Unlock()
	if seen && prevHash == hash {
		// Byte-identical content, nothing to re-extract.
		return nil
	}

	snapshot, err := a.extractor.Extract(ctx, path, source, language)
	if err != nil {
		log.Printf("Warning: parse failed for %s, keeping previous snapshot: %v", path, err)
		return nil
	}

	a.mu.Lock()
	old := a.snapshots[path]
	a.snapshots[path] = snapshot
	a.hashes[path] = hash
	a.mu.Unlock()

	if a.onSnapshot != nil {
		a.onSnapshot(snapshot, fmt.Sprintf("%016x", hash))
	}

	return &FileChange{
		Path:     path,
		Language: language,
		Changes:  analysis.Diff(old, snapshot),
	}
}

// Snapshot returns the cached snapshot for a path, or nil.
func (a *Aggregator) Snapshot(path string) *models.FileSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshots[path]
}

// Status reports cache and pending-set sizes.
func (a *Aggregator) Status() (tracked, pending int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.snapshots), len(a.pending)
}

// Close cancels any armed timer. A batch already draining finishes.
func (a *Aggregator) Close() {
	a.sched.Stop()
}
