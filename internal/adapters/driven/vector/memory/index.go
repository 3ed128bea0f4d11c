// Package memory provides an in-memory brute-force vector index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index holds retrieval units in memory and searches them exhaustively
// by cosine similarity. Replace swaps the whole snapshot under the write
// lock, so concurrent readers see either the old or the new index.
//
// Brute force is deliberate: corpora here are personal document sets,
// thousands of units at most, where a scan is faster than maintaining
// an approximate structure.
type Index struct {
	mu    sync.RWMutex
	units []domain.RetrievalUnit
	norms []float64
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Add appends units to the current snapshot.
func (x *Index) Add(_ context.Context, units []domain.RetrievalUnit) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, unit := range units {
		x.units = append(x.units, unit)
		x.norms = append(x.norms, norm(unit.Embedding))
	}
	return nil
}

// Search returns the k most similar units to the query vector, ties
// broken by lower insertion sequence.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]domain.RetrievedUnit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search: %w: k must be positive", domain.ErrInvalidInput)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.units) == 0 {
		return []domain.RetrievedUnit{}, nil
	}

	queryNorm := norm(query)
	if queryNorm == 0 {
		return []domain.RetrievedUnit{}, nil
	}

	scored := make([]domain.RetrievedUnit, 0, len(x.units))
	for i, unit := range x.units {
		if len(unit.Embedding) != len(query) {
			return nil, fmt.Errorf("search: %w: unit %s has dimension %d, query has %d",
				domain.ErrIndexInconsistent, unit.ID, len(unit.Embedding), len(query))
		}
		var score float64
		if x.norms[i] > 0 {
			score = dot(query, unit.Embedding) / (queryNorm * x.norms[i])
		}
		scored = append(scored, domain.RetrievedUnit{Unit: unit, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Unit.Sequence < scored[j].Unit.Sequence
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Replace atomically swaps the whole index for a new unit set.
func (x *Index) Replace(_ context.Context, units []domain.RetrievalUnit) error {
	fresh := make([]domain.RetrievalUnit, len(units))
	norms := make([]float64, len(units))
	copy(fresh, units)
	for i := range fresh {
		norms[i] = norm(fresh[i].Embedding)
	}

	x.mu.Lock()
	x.units = fresh
	x.norms = norms
	x.mu.Unlock()
	return nil
}

// Len returns the number of indexed units.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.units)
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}
