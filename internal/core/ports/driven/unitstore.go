package driven

import (
	"context"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// UnitStore persists retrieval units and their embeddings so the vector
// index can be reloaded without re-embedding the corpus.
type UnitStore interface {
	// SaveUnits stores units for a document in one transaction.
	SaveUnits(ctx context.Context, units []domain.RetrievalUnit) error

	// ListUnits returns all units ordered by insertion sequence.
	ListUnits(ctx context.Context) ([]domain.RetrievalUnit, error)

	// DeleteByDocument removes all units cut from a document.
	DeleteByDocument(ctx context.Context, documentName string) error

	// ReplaceAll atomically replaces the whole unit set (full reindex).
	ReplaceAll(ctx context.Context, units []domain.RetrievalUnit) error

	// Clear removes every unit.
	Clear(ctx context.Context) error
}
