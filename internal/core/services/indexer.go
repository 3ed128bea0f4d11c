package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driving"
	"github.com/dossier-labs/dossier-cli/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// Indexer maintains the retrieval index: it cuts corpus documents into
// units, embeds them, persists them and feeds the vector index.
//
// A full reindex builds the complete unit set first and then swaps both
// the persisted set and the in-memory index, so readers observe either
// the pre- or post-reindex state, never a mixture.
type Indexer struct {
	corpus   driven.CorpusStore
	units    driven.UnitStore
	vector   driven.VectorIndex
	embedder driven.EmbeddingService
	chunker  driven.Chunker

	mu      sync.Mutex
	nextSeq int
}

// NewIndexer creates a new indexer.
func NewIndexer(
	corpus driven.CorpusStore,
	units driven.UnitStore,
	vector driven.VectorIndex,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
) *Indexer {
	return &Indexer{
		corpus:   corpus,
		units:    units,
		vector:   vector,
		embedder: embedder,
		chunker:  chunker,
	}
}

// IndexDocument appends units for one stored document without touching
// existing ones.
func (x *Indexer) IndexDocument(ctx context.Context, outputName string) (int, error) {
	if x.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	text, err := x.corpus.ReadText(ctx, outputName)
	if err != nil {
		return 0, fmt.Errorf("read artifact %s: %w", outputName, err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	built, err := x.buildUnits(ctx, outputName, text, x.nextSeq)
	if err != nil {
		return 0, err
	}
	if len(built) == 0 {
		return 0, nil
	}

	if err := x.units.SaveUnits(ctx, built); err != nil {
		return 0, fmt.Errorf("save units: %w", err)
	}
	if err := x.vector.Add(ctx, built); err != nil {
		return 0, fmt.Errorf("add to vector index: %w", err)
	}

	x.nextSeq += len(built)
	logger.Debug("Indexed %s: %d units", outputName, len(built))
	return len(built), nil
}

// Reindex rebuilds all units and embeddings from the current corpus
// snapshot and atomically replaces the prior index.
func (x *Indexer) Reindex(ctx context.Context) (int, error) {
	if x.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	entries, err := x.corpus.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list corpus: %w", err)
	}

	logger.Section("Reindex")
	logger.Info("Rebuilding index over %d documents", len(entries))

	x.mu.Lock()
	defer x.mu.Unlock()

	var all []domain.RetrievalUnit
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		text, err := x.corpus.ReadText(ctx, entry.OutputName)
		if err != nil {
			return 0, fmt.Errorf("read artifact %s: %w", entry.OutputName, err)
		}
		built, err := x.buildUnits(ctx, entry.OutputName, text, len(all))
		if err != nil {
			return 0, err
		}
		all = append(all, built...)
	}

	if err := x.units.ReplaceAll(ctx, all); err != nil {
		return 0, fmt.Errorf("replace units: %w", err)
	}
	if err := x.vector.Replace(ctx, all); err != nil {
		return 0, fmt.Errorf("swap vector index: %w", err)
	}

	x.nextSeq = len(all)
	logger.Info("Reindex complete: %d units", len(all))
	return len(all), nil
}

// Load restores the in-memory index from persisted units at startup.
func (x *Indexer) Load(ctx context.Context) (int, error) {
	stored, err := x.units.ListUnits(ctx)
	if err != nil {
		return 0, fmt.Errorf("list units: %w", err)
	}
	if err := x.vector.Replace(ctx, stored); err != nil {
		return 0, fmt.Errorf("load vector index: %w", err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.nextSeq = 0
	for i := range stored {
		if stored[i].Sequence >= x.nextSeq {
			x.nextSeq = stored[i].Sequence + 1
		}
	}
	return len(stored), nil
}

// Reset drops all units and embeddings.
func (x *Indexer) Reset(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.units.Clear(ctx); err != nil {
		return fmt.Errorf("clear units: %w", err)
	}
	if err := x.vector.Replace(ctx, nil); err != nil {
		return fmt.Errorf("clear vector index: %w", err)
	}
	x.nextSeq = 0
	return nil
}

// buildUnits cuts one document into units and embeds them, assigning
// sequences from seqBase.
func (x *Indexer) buildUnits(
	ctx context.Context, documentName, text string, seqBase int,
) ([]domain.RetrievalUnit, error) {
	spans := x.chunker.Split(text)
	if len(spans) == 0 {
		return nil, nil
	}

	embeddings, err := x.embedder.EmbedBatch(ctx, spans)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w: %w", documentName, domain.ErrEmbeddingUnavailable, err)
	}
	if len(embeddings) != len(spans) {
		return nil, fmt.Errorf("embed %s: got %d vectors for %d spans", documentName, len(embeddings), len(spans))
	}

	units := make([]domain.RetrievalUnit, len(spans))
	for i, span := range spans {
		units[i] = domain.RetrievalUnit{
			ID:           uuid.New().String(),
			DocumentName: documentName,
			Position:     i,
			Sequence:     seqBase + i,
			Text:         span,
			Embedding:    embeddings[i],
		}
	}
	return units, nil
}
