package driving

import (
	"context"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// IngestService drives the ingestion pipeline: extraction, conflict
// resolution, corpus storage and incremental indexing.
type IngestService interface {
	// ProcessFile ingests a single file and returns its terminal outcome.
	// Per-file extraction failures are reported in the outcome, not
	// returned as errors; only unrecoverable problems (bad path) error.
	ProcessFile(ctx context.Context, path string) (*domain.FileOutcome, error)

	// ProcessDirectory recursively ingests every supported file under
	// root. Extraction may run concurrently; index mutation is
	// serialized. Cancellation between files leaves state consistent.
	ProcessDirectory(ctx context.Context, root string) (*domain.Report, error)

	// CheckConflicts classifies every candidate under path without
	// extracting or mutating anything (dry run).
	CheckConflicts(ctx context.Context, path string) ([]domain.Resolution, error)

	// List enumerates corpus artifacts with provenance.
	List(ctx context.Context) ([]domain.CorpusEntry, error)

	// Clean removes all artifacts and the index.
	Clean(ctx context.Context) error

	// Verify surfaces disagreements between artifacts and the index.
	Verify(ctx context.Context) error

	// RebuildIndex reconstructs the corpus index from the artifact
	// provenance headers. Returns the number of entries recovered.
	RebuildIndex(ctx context.Context) (int, error)
}
