// Package indexer coordinates the discovery, parsing, storage, edge
// resolution, and embedding stages that build a project's code index.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/codelibrarian/internal/config"
	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/parser"
	"github.com/dshills/codelibrarian/internal/storage"
	"github.com/dshills/codelibrarian/pkg/types"
)

// Mode selects how much of the pipeline a Run executes.
type Mode string

const (
	// ModeIncremental parses only files whose content hash changed
	// since the last run, then embeds any symbol still missing a
	// vector.
	ModeIncremental Mode = "incremental"
	// ModeFull reparses every discovered file regardless of hash,
	// then embeds.
	ModeFull Mode = "full"
	// ModeReembed skips discovery and parsing entirely, clears every
	// stored embedding, and runs the embedding pass over all symbols
	// without re-walking the tree.
	ModeReembed Mode = "reembed"
)

// ErrAlreadyRunning is returned by Run when another indexing pass is
// already in flight for this Indexer.
var ErrAlreadyRunning = errors.New("index already running")

// Stats summarizes one Run.
type Stats struct {
	FilesIndexed     int
	FilesSkipped     int
	FilesFailed      int
	SymbolsExtracted int
	ImportEdges      int
	CallEdges        int
	InheritEdges     int
	EmbeddedSymbols  int
	FilesDeleted     int
	Duration         time.Duration
	Errors           []string
}

// Indexer owns the pipeline's shared dependencies: the store, the
// parser dispatcher, and (optionally) an embeddings client.
type Indexer struct {
	store     *storage.Store
	extractor *parser.Extractor
	embed     *embedder.Client
	cfg       *config.Config
	workers   int
	lock      IndexLock
}

// New builds an Indexer. embed may be nil, in which case Run skips
// the embedding stage entirely (matching embeddings.enabled = false).
func New(store *storage.Store, embed *embedder.Client, cfg *config.Config) *Indexer {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &Indexer{
		store:     store,
		extractor: parser.New(),
		embed:     embed,
		cfg:       cfg,
		workers:   workers,
	}
}

// Run executes the requested mode. Only one Run may be in flight at a
// time; a concurrent call returns ErrAlreadyRunning immediately
// rather than blocking, since a second full index of the same
// project has nothing useful to do while the first is writing.
func (idx *Indexer) Run(ctx context.Context, mode Mode) (*Stats, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrAlreadyRunning
	}
	defer idx.lock.Release()

	start := time.Now()
	stats := &Stats{}

	if mode != ModeReembed {
		tasks, err := discoverFiles(idx.cfg)
		if err != nil {
			return nil, fmt.Errorf("discover files: %w", err)
		}
		if err := idx.indexTasks(ctx, tasks, mode, stats); err != nil {
			return nil, err
		}
		if mode == ModeFull {
			if err := idx.deleteVanishedFiles(ctx, tasks, stats); err != nil {
				return nil, fmt.Errorf("delete vanished files: %w", err)
			}
		}
		if err := idx.store.ResolveGraphEdges(ctx); err != nil {
			return nil, fmt.Errorf("resolve graph edges: %w", err)
		}
	}

	if idx.embed != nil && idx.cfg.Embeddings.Enabled {
		if mode == ModeReembed {
			if err := idx.store.ClearEmbeddings(ctx); err != nil {
				return nil, fmt.Errorf("clear embeddings: %w", err)
			}
		}
		if err := idx.embedPending(ctx, stats); err != nil {
			return nil, fmt.Errorf("embed pending symbols: %w", err)
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// parseOutcome is one file's parse result carried from the parallel
// parse stage to the serial write stage.
type parseOutcome struct {
	task   fileTask
	hash   string
	result *types.ParseResult
	err    error
}

// indexTasks parses files concurrently (CPU-bound work, safe to
// parallelize) and feeds the results to a single writer goroutine
// that commits them one file at a time (SQLite's single-writer
// discipline — see internal/storage/doc.go).
func (idx *Indexer) indexTasks(ctx context.Context, tasks []fileTask, mode Mode, stats *Stats) error {
	outcomes := make(chan parseOutcome, idx.workers)

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, idx.workers)

	g.Go(func() error {
		defer close(outcomes)
		var parseGroup sync.WaitGroup
		for _, task := range tasks {
			task := task
			select {
			case <-gctx.Done():
				return gctx.Err()
			case sem <- struct{}{}:
			}
			parseGroup.Add(1)
			go func() {
				defer parseGroup.Done()
				defer func() { <-sem }()
				outcome := idx.parseOne(gctx, task, mode)
				select {
				case outcomes <- outcome:
				case <-gctx.Done():
				}
			}()
		}
		parseGroup.Wait()
		return nil
	})

	var mu sync.Mutex
	g.Go(func() error {
		for outcome := range outcomes {
			if err := idx.writeOne(ctx, outcome, stats, &mu); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

// parseOne hashes and, unless the hash is unchanged from the last
// run, parses one file. It never returns a fatal error for a bad
// source file: parse diagnostics travel inside the ParseResult.
func (idx *Indexer) parseOne(ctx context.Context, task fileTask, mode Mode) parseOutcome {
	hash, err := hashFile(task.AbsPath)
	if err != nil {
		return parseOutcome{task: task, err: err}
	}

	if mode == ModeIncremental {
		existing, err := idx.store.GetFileByPath(ctx, task.RelPath)
		if err == nil && existing.ContentHash == hash {
			return parseOutcome{task: task, hash: hash}
		}
	}

	result, err := idx.extractor.ParseFile(task.AbsPath, task.RelPath, task.Lang)
	if err != nil {
		return parseOutcome{task: task, hash: hash, err: err}
	}
	return parseOutcome{task: task, hash: hash, result: result}
}

// writeOne commits a single file's symbols and edges inside its own
// transaction. Running one transaction per file, rather than one for
// the whole batch, keeps a failure on file N from rolling back
// work already committed for files 1..N-1.
func (idx *Indexer) writeOne(ctx context.Context, outcome parseOutcome, stats *Stats, mu *sync.Mutex) error {
	mu.Lock()
	defer mu.Unlock()

	if outcome.err != nil {
		stats.FilesFailed++
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", outcome.task.RelPath, outcome.err))
		return nil
	}
	if outcome.result == nil {
		stats.FilesSkipped++
		return nil
	}

	tx, err := idx.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", outcome.task.RelPath, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	fileID, err := tx.UpsertFile(ctx, outcome.task.RelPath, string(outcome.task.Lang), outcome.hash)
	if err != nil {
		return err
	}
	if err := tx.DeleteFileSymbols(ctx, fileID); err != nil {
		return err
	}

	symbolIDs := make(map[string]int64, len(outcome.result.Symbols))
	for _, sym := range outcome.result.Symbols {
		if err := sym.Validate(); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", outcome.task.RelPath, err))
			continue
		}
		var parentID *int64
		if sym.ParentQualifiedName != "" {
			if id, ok := symbolIDs[sym.ParentQualifiedName]; ok {
				parentID = &id
			}
		}
		id, err := tx.InsertSymbol(ctx, fileID, sym, parentID)
		if err != nil {
			return err
		}
		symbolIDs[sym.QualifiedName] = id
		stats.SymbolsExtracted++
	}

	for _, imp := range outcome.result.Edges.Imports {
		if err := tx.InsertImport(ctx, fileID, imp); err != nil {
			return err
		}
		stats.ImportEdges++
	}
	for _, call := range outcome.result.Edges.Calls {
		callerID, ok := symbolIDs[call.CallerQualifiedName]
		if !ok {
			continue
		}
		if err := tx.InsertCall(ctx, callerID, call); err != nil {
			return err
		}
		stats.CallEdges++
	}
	for _, inh := range outcome.result.Edges.Inherits {
		childID, ok := symbolIDs[inh.ChildQualifiedName]
		if !ok {
			continue
		}
		if err := tx.InsertInherit(ctx, childID, inh); err != nil {
			return err
		}
		stats.InheritEdges++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", outcome.task.RelPath, err)
	}
	committed = true
	stats.FilesIndexed++
	return nil
}

// deleteVanishedFiles removes files the store still tracks but that
// discovery no longer found on disk. Only ModeFull calls this: an
// incremental pass only ever looks at the files it was told changed,
// so it has no way to know a file disappeared rather than simply
// going unmentioned.
func (idx *Indexer) deleteVanishedFiles(ctx context.Context, tasks []fileTask, stats *Stats) error {
	onDisk := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		onDisk[t.RelPath] = true
	}

	tracked, err := idx.store.ListFiles(ctx)
	if err != nil {
		return err
	}
	for _, f := range tracked {
		if onDisk[f.RelativePath] {
			continue
		}
		if err := idx.store.DeleteFile(ctx, f.ID); err != nil {
			return err
		}
		stats.FilesDeleted++
	}
	return nil
}

// embedPending fills in vectors for every symbol that doesn't have
// one yet, batching requests to the embeddings endpoint at
// cfg.Embeddings.BatchSize.
func (idx *Indexer) embedPending(ctx context.Context, stats *Stats) error {
	if err := idx.store.EnsureVectorTable(ctx, idx.cfg.Embeddings.Dimensions); err != nil {
		return err
	}

	for {
		pending, err := idx.store.SymbolsWithoutEmbeddings(ctx, idx.cfg.Embeddings.BatchSize)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		texts := make([]string, len(pending))
		for i, sym := range pending {
			texts[i] = sym.EmbeddingText(idx.cfg.Embeddings.MaxChars)
		}

		embeddings, err := idx.embed.EmbedTexts(ctx, texts)
		if err != nil {
			slog.Default().Warn("embedding request failed, aborting embedding phase", "error", err)
			return nil
		}

		for i, sym := range pending {
			if embeddings[i] == nil {
				continue
			}
			if err := idx.store.UpsertEmbedding(ctx, sym.ID, embeddings[i].Vector, embeddings[i].Model); err != nil {
				return err
			}
			stats.EmbeddedSymbols++
		}
	}
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
