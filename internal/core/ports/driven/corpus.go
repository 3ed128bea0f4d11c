package driven

import (
	"context"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// CorpusStore persists extraction records as named text artifacts with
// embedded provenance headers, and maintains the corpus index keyed by
// output filename. The index and the artifact set must be consistent
// after any single operation completes.
type CorpusStore interface {
	// Put stores a conflict-resolver-approved extraction record.
	// The artifact is written durably before the index entry is
	// registered; a failed write never registers an entry.
	Put(ctx context.Context, record *domain.ExtractionRecord) error

	// Get returns the index entry for an output name.
	Get(ctx context.Context, outputName string) (*domain.CorpusEntry, error)

	// GetByFingerprint returns the active entry for a content fingerprint,
	// or domain.ErrNotFound.
	GetByFingerprint(ctx context.Context, fingerprint string) (*domain.CorpusEntry, error)

	// List enumerates all active entries ordered by output name.
	List(ctx context.Context) ([]domain.CorpusEntry, error)

	// ReadText returns the extracted text body of an artifact.
	ReadText(ctx context.Context, outputName string) (string, error)

	// RemoveAll clears the corpus and the index (full reset).
	RemoveAll(ctx context.Context) error

	// Verify compares the on-disk artifact set against the index and
	// returns domain.ErrIndexInconsistent (with detail) on disagreement.
	// Disagreements are surfaced, never silently repaired.
	Verify(ctx context.Context) error

	// RebuildIndex reconstructs the index by re-parsing the provenance
	// headers of the artifacts on disk, replacing the prior entries.
	// Returns the number of entries recovered.
	RebuildIndex(ctx context.Context) (int, error)
}
