package driving

import (
	"context"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// QueryService answers natural-language questions grounded in the corpus.
// Every query returns some answer; query-path errors degrade to the
// extractive fallback instead of surfacing to the caller.
type QueryService interface {
	// Ask retrieves the most relevant units and synthesizes an answer.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Health reports capability availability and index sizes.
	Health(ctx context.Context) domain.Health

	// Sources returns the distinct document names present in the corpus.
	Sources(ctx context.Context) ([]string, error)
}

// IndexService maintains the retrieval index over the corpus.
type IndexService interface {
	// Reindex rebuilds all units and embeddings from the current corpus
	// snapshot and atomically replaces the prior index.
	Reindex(ctx context.Context) (int, error)

	// IndexDocument appends units for one newly stored document without
	// touching existing ones.
	IndexDocument(ctx context.Context, outputName string) (int, error)

	// Load restores the in-memory index from persisted units at startup.
	Load(ctx context.Context) (int, error)

	// Reset drops all units and embeddings (corpus reset).
	Reset(ctx context.Context) error
}
