package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

func unit(id string, seq int, embedding []float32) domain.RetrievalUnit {
	return domain.RetrievalUnit{
		ID:           id,
		DocumentName: id + ".txt",
		Sequence:     seq,
		Text:         "texte " + id,
		Embedding:    embedding,
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	index := New()

	results, err := index.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	index := New()
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.RetrievalUnit{
		unit("orthogonal", 0, []float32{0, 1}),
		unit("aligned", 1, []float32{2, 0}),
		unit("diagonal", 2, []float32{1, 1}),
	}))

	results, err := index.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "aligned", results[0].Unit.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "diagonal", results[1].Unit.ID)
	assert.Equal(t, "orthogonal", results[2].Unit.ID)

	// Magnitude does not matter, only direction.
	assert.InDelta(t, 0.7071, results[1].Score, 1e-3)
}

func TestSearchTruncatesToK(t *testing.T) {
	index := New()
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.RetrievalUnit{
		unit("a", 0, []float32{1, 0}),
		unit("b", 1, []float32{0.9, 0.1}),
		unit("c", 2, []float32{0, 1}),
	}))

	results, err := index.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchBreaksTiesByInsertionSequence(t *testing.T) {
	index := New()
	ctx := context.Background()

	// Identical embeddings: identical scores.
	require.NoError(t, index.Add(ctx, []domain.RetrievalUnit{
		unit("later", 7, []float32{1, 1}),
		unit("earlier", 2, []float32{1, 1}),
	}))

	results, err := index.Search(ctx, []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "earlier", results[0].Unit.ID)
	assert.Equal(t, "later", results[1].Unit.ID)
}

func TestSearchRejectsInvalidK(t *testing.T) {
	index := New()

	_, err := index.Search(context.Background(), []float32{1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchDimensionMismatch(t *testing.T) {
	index := New()
	ctx := context.Background()
	require.NoError(t, index.Add(ctx, []domain.RetrievalUnit{unit("a", 0, []float32{1, 0, 0})}))

	_, err := index.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexInconsistent)
}

func TestReplaceSwapsSnapshot(t *testing.T) {
	index := New()
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.RetrievalUnit{unit("old", 0, []float32{1, 0})}))
	require.NoError(t, index.Replace(ctx, []domain.RetrievalUnit{
		unit("new1", 0, []float32{1, 0}),
		unit("new2", 1, []float32{0, 1}),
	}))

	assert.Equal(t, 2, index.Len())

	results, err := index.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "new1", results[0].Unit.ID)
}

func TestReplaceWithNilClears(t *testing.T) {
	index := New()
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.RetrievalUnit{unit("a", 0, []float32{1})}))
	require.NoError(t, index.Replace(ctx, nil))

	assert.Equal(t, 0, index.Len())
}

func TestSearchZeroQueryVector(t *testing.T) {
	index := New()
	ctx := context.Background()
	require.NoError(t, index.Add(ctx, []domain.RetrievalUnit{unit("a", 0, []float32{1, 0})}))

	results, err := index.Search(ctx, []float32{0, 0}, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}
