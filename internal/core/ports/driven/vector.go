package driven

import (
	"context"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// VectorIndex provides nearest-neighbour lookup over retrieval unit
// embeddings by cosine similarity. Mutation follows exclusive-writer
// discipline; reads may be served concurrently. A full replace is a
// single atomic snapshot swap so readers never observe a half-built
// index.
type VectorIndex interface {
	// Add appends units to the current snapshot.
	Add(ctx context.Context, units []domain.RetrievalUnit) error

	// Search returns the k most similar units to the query vector,
	// ties broken by lower insertion sequence. An empty index returns
	// an empty slice, not an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedUnit, error)

	// Replace atomically swaps the whole index for a new unit set.
	Replace(ctx context.Context, units []domain.RetrievalUnit) error

	// Len returns the number of indexed units.
	Len() int

	// Close releases resources.
	Close() error
}
