package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driving"
	"github.com/dossier-labs/dossier-cli/internal/logger"
)

// Ensure IngestPipeline implements the interface.
var _ driving.IngestService = (*IngestPipeline)(nil)

// DefaultWorkers is the default extraction parallelism for directories.
const DefaultWorkers = 4

// IngestPipeline orchestrates ingestion: extraction, conflict
// resolution, corpus storage and incremental indexing.
//
// Extraction runs concurrently across independent files; index mutation
// (resolve-then-put) is serialized behind commitMu so no two files race
// to claim the same renamed slot. Each file's commit is atomic and
// independent, so a run may be cancelled between files without
// corrupting state.
type IngestPipeline struct {
	extractors driven.ExtractorRegistry
	corpus     driven.CorpusStore
	resolver   *ConflictResolver
	indexer    driving.IndexService
	workers    int

	commitMu sync.Mutex
}

// IngestOption configures the pipeline.
type IngestOption func(*IngestPipeline)

// WithWorkers sets the extraction parallelism for directory runs.
func WithWorkers(n int) IngestOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewIngestPipeline creates a new ingestion pipeline.
// The indexer is optional - when nil, stored documents are not indexed
// incrementally and a reindex is required before querying.
func NewIngestPipeline(
	extractors driven.ExtractorRegistry,
	corpus driven.CorpusStore,
	indexer driving.IndexService,
	opts ...IngestOption,
) *IngestPipeline {
	p := &IngestPipeline{
		extractors: extractors,
		corpus:     corpus,
		resolver:   NewConflictResolver(corpus),
		indexer:    indexer,
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile ingests a single file and returns its terminal outcome.
func (p *IngestPipeline) ProcessFile(ctx context.Context, path string) (*domain.FileOutcome, error) {
	file, err := observeFile(path)
	if err != nil {
		return nil, err
	}
	outcome := p.processOne(ctx, *file)
	return &outcome, nil
}

// ProcessDirectory recursively ingests every supported file under root.
func (p *IngestPipeline) ProcessDirectory(ctx context.Context, root string) (*domain.Report, error) {
	paths, err := scanSupported(root)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{Root: root, StartedAt: time.Now()}
	logger.Section("Directory Ingestion")
	logger.Info("Found %d supported files under %s", len(paths), root)

	outcomes := make([]domain.FileOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := observeFile(path)
			if err != nil {
				outcomes[i] = domain.FileOutcome{
					SourcePath: path,
					Status:     domain.StatusFailed,
					Reason:     err.Error(),
					Err:        err,
				}
				return nil
			}
			outcomes[i] = p.processOne(gctx, *file)
			return nil
		})
	}

	err = g.Wait()
	for i := range outcomes {
		if outcomes[i].SourcePath != "" {
			report.Add(outcomes[i])
		}
	}
	if err != nil {
		// Cancelled between files; committed work is intact.
		return report, err
	}

	logger.Info("Ingestion complete: %d processed, %d renamed, %d skipped, %d failed",
		report.Processed(), report.Renamed(), report.Skipped(), report.Failed())
	return report, nil
}

// CheckConflicts classifies every candidate under path without
// extracting or mutating anything. Each candidate is resolved against
// the current index state only; names that a real run would allocate
// earlier in the same batch are not simulated.
func (p *IngestPipeline) CheckConflicts(ctx context.Context, path string) ([]domain.Resolution, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var paths []string
	if info.IsDir() {
		paths, err = scanSupported(path)
		if err != nil {
			return nil, err
		}
	} else if domain.DetectKind(path) != domain.FileKindUnknown {
		paths = []string{path}
	}

	resolutions := make([]domain.Resolution, 0, len(paths))
	for _, candidate := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := observeFile(candidate)
		if err != nil {
			return nil, err
		}
		res, err := p.resolver.Resolve(ctx, *file)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, *res)
	}
	return resolutions, nil
}

// List enumerates corpus artifacts with provenance.
func (p *IngestPipeline) List(ctx context.Context) ([]domain.CorpusEntry, error) {
	return p.corpus.List(ctx)
}

// Clean removes all artifacts, the corpus index and the retrieval index.
func (p *IngestPipeline) Clean(ctx context.Context) error {
	if err := p.corpus.RemoveAll(ctx); err != nil {
		return fmt.Errorf("remove corpus: %w", err)
	}
	if p.indexer != nil {
		if err := p.indexer.Reset(ctx); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
	}
	return nil
}

// Verify surfaces disagreements between artifacts and the index.
func (p *IngestPipeline) Verify(ctx context.Context) error {
	return p.corpus.Verify(ctx)
}

// RebuildIndex reconstructs the corpus index from the artifact headers.
// The retrieval index is not touched; run a reindex afterwards if the
// recovered corpus differs from the indexed one.
func (p *IngestPipeline) RebuildIndex(ctx context.Context) (int, error) {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()
	return p.corpus.RebuildIndex(ctx)
}

// processOne runs the full pipeline for one observed file and returns a
// terminal outcome. Per-file errors are captured in the outcome so the
// batch continues.
func (p *IngestPipeline) processOne(ctx context.Context, file domain.SourceFile) domain.FileOutcome {
	if file.Kind == domain.FileKindUnknown {
		return domain.FileOutcome{
			SourcePath: file.Path,
			Status:     domain.StatusUnsupported,
			Reason: fmt.Sprintf("unsupported file type %s (supported: %s)",
				filepath.Ext(file.Path), strings.Join(domain.SupportedExtensions(), " ")),
			Err: domain.ErrUnsupportedFormat,
		}
	}

	// Pre-flight resolve: a fingerprint already indexed skips extraction
	// entirely, which is what makes re-ingestion idempotent and cheap.
	p.commitMu.Lock()
	res, err := p.resolver.Resolve(ctx, file)
	p.commitMu.Unlock()
	if err != nil {
		return failedOutcome(file.Path, err)
	}
	if res.Case == domain.CaseSkip {
		return skippedOutcome(file.Path, res)
	}

	logger.Debug("Extracting %s (%s)", file.Path, file.Kind)
	extraction, err := p.extractors.Extract(ctx, file)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			return domain.FileOutcome{
				SourcePath: file.Path,
				Status:     domain.StatusUnsupported,
				Reason:     err.Error(),
				Err:        err,
			}
		}
		return failedOutcome(file.Path, err)
	}

	// Serialized commit: re-resolve under the lock in case a concurrent
	// file claimed the slot (or the same fingerprint) since pre-flight.
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	res, err = p.resolver.Resolve(ctx, file)
	if err != nil {
		return failedOutcome(file.Path, err)
	}
	if res.Case == domain.CaseSkip {
		return skippedOutcome(file.Path, res)
	}

	record := &domain.ExtractionRecord{
		OutputName:  res.OutputName,
		SourcePath:  file.Path,
		SourceName:  file.Name(),
		Fingerprint: file.Fingerprint,
		Kind:        file.Kind,
		Language:    extraction.Language,
		Text:        extraction.Text,
		ExtractedAt: time.Now(),
	}
	if err := p.corpus.Put(ctx, record); err != nil {
		return failedOutcome(file.Path, err)
	}

	if p.indexer != nil {
		if _, err := p.indexer.IndexDocument(ctx, record.OutputName); err != nil {
			// The artifact is stored; only retrieval indexing failed.
			// A later reindex recovers, so report but do not fail.
			logger.Warn("Indexing %s failed: %v", record.OutputName, err)
		}
	}

	if res.Case == domain.CaseRename {
		return domain.FileOutcome{
			SourcePath: file.Path,
			Status:     domain.StatusRenamed,
			OutputName: res.OutputName,
			Reason: fmt.Sprintf("renamed due to conflict: %s already holds content from %s",
				res.BaseName, res.PriorEntry.SourcePath),
		}
	}
	return domain.FileOutcome{
		SourcePath: file.Path,
		Status:     domain.StatusProcessed,
		OutputName: res.OutputName,
	}
}

func skippedOutcome(path string, res *domain.Resolution) domain.FileOutcome {
	return domain.FileOutcome{
		SourcePath: path,
		Status:     domain.StatusSkipped,
		OutputName: res.PriorEntry.OutputName,
		Reason: fmt.Sprintf("skipped - already extracted on %s (as %s)",
			res.PriorEntry.ExtractedAt.Format("2006-01-02 15:04:05"), res.PriorEntry.OutputName),
	}
}

func failedOutcome(path string, err error) domain.FileOutcome {
	return domain.FileOutcome{
		SourcePath: path,
		Status:     domain.StatusFailed,
		Reason:     err.Error(),
		Err:        err,
	}
}

// observeFile stats and fingerprints a source file.
func observeFile(path string) (*domain.SourceFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("observe %s: %w: is a directory", abs, domain.ErrInvalidInput)
	}

	fingerprint, err := fingerprintFile(abs)
	if err != nil {
		return nil, err
	}

	return &domain.SourceFile{
		Path:        abs,
		Fingerprint: fingerprint,
		Kind:        domain.DetectKind(abs),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

// fingerprintFile computes the SHA-256 hex digest of a file's bytes.
func fingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// scanSupported walks root and returns all supported files in
// deterministic (sorted) order.
func scanSupported(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: %w: not a directory", root, domain.ErrInvalidInput)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if domain.DetectKind(path) != domain.FileKindUnknown {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
