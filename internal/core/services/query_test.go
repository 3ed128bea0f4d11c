package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

func retrievedFixture() []domain.RetrievedUnit {
	return []domain.RetrievedUnit{
		{Unit: domain.RetrievalUnit{ID: "u1", DocumentName: "releve.txt", Sequence: 0,
			Text: "Le solde du compte au 31 mars est de 1200 euros."}, Score: 0.92},
		{Unit: domain.RetrievalUnit{ID: "u2", DocumentName: "facture.txt", Sequence: 1,
			Text: "Facture d'électricité: 89 euros."}, Score: 0.71},
		{Unit: domain.RetrievalUnit{ID: "u3", DocumentName: "releve.txt", Sequence: 2,
			Text: "Virement reçu le 15 mars."}, Score: 0.65},
	}
}

func newTestEngine(llm *stubLLM, results []domain.RetrievedUnit, opts ...QueryOption) (*QueryEngine, *stubLLM) {
	corpus := newMemCorpus()
	vector := &stubVector{results: results}
	embedder := &stubEmbedder{dims: 4}
	var svc *QueryEngine
	if llm == nil {
		svc = NewQueryEngine(corpus, vector, embedder, nil, testPrompts(), opts...)
	} else {
		svc = NewQueryEngine(corpus, vector, embedder, llm, testPrompts(), opts...)
	}
	return svc, llm
}

func TestAskGenerative(t *testing.T) {
	llm := &stubLLM{reply: "Le solde est de 1200 euros."}
	engine, _ := newTestEngine(llm, retrievedFixture())

	answer, err := engine.Ask(context.Background(), "Quel est le solde du compte ?")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeGenerative, answer.Mode)
	assert.Equal(t, "Le solde est de 1200 euros.", answer.Text)
	// Distinct source documents, in retrieval order.
	assert.Equal(t, []string{"releve.txt", "facture.txt"}, answer.Sources)
	assert.Len(t, answer.Retrieved, 3)
	assert.Equal(t, 1, llm.calls)

	// The prompt carries the question and the retrieved context.
	assert.Contains(t, llm.lastIn, "Quel est le solde du compte ?")
	assert.Contains(t, llm.lastIn, "1200 euros")
}

func TestAskFallsBackOnGenerationError(t *testing.T) {
	llm := &stubLLM{err: errors.New("model not loaded")}
	engine, _ := newTestEngine(llm, retrievedFixture())

	answer, err := engine.Ask(context.Background(), "Quel est le solde ?")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeExtractive, answer.Mode)
	assert.Equal(t, "Le solde du compte au 31 mars est de 1200 euros.", answer.Text)
	assert.Equal(t, []string{"releve.txt", "facture.txt"}, answer.Sources)
	// Generation is attempted exactly once, never retried.
	assert.Equal(t, 1, llm.calls)
}

func TestAskFallsBackOnGenerationTimeout(t *testing.T) {
	llm := &stubLLM{reply: "trop tard", delay: 200 * time.Millisecond}
	engine, _ := newTestEngine(llm, retrievedFixture(),
		WithGenerateTimeout(10*time.Millisecond))

	answer, err := engine.Ask(context.Background(), "Quel est le solde ?")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeExtractive, answer.Mode)
	assert.Equal(t, "Le solde du compte au 31 mars est de 1200 euros.", answer.Text)
	assert.Equal(t, 1, llm.calls)
}

func TestAskExtractiveWhenNoGenerationCapability(t *testing.T) {
	engine, _ := newTestEngine(nil, retrievedFixture())

	answer, err := engine.Ask(context.Background(), "Quel est le solde ?")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeExtractive, answer.Mode)
	assert.Equal(t, "Le solde du compte au 31 mars est de 1200 euros.", answer.Text)
}

func TestAskEmptyIndexReturnsNoInformation(t *testing.T) {
	llm := &stubLLM{reply: "ne devrait pas être appelé"}
	engine, _ := newTestEngine(llm, nil)

	answer, err := engine.Ask(context.Background(), "Quel est le solde ?")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeExtractive, answer.Mode)
	assert.Contains(t, answer.Text, "Aucune information")
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 0, llm.calls)
}

func TestAskEmbeddingFailureDegrades(t *testing.T) {
	corpus := newMemCorpus()
	vector := &stubVector{results: retrievedFixture()}
	embedder := &stubEmbedder{dims: 4, err: errors.New("connection refused")}
	llm := &stubLLM{reply: "réponse"}
	engine := NewQueryEngine(corpus, vector, embedder, llm, testPrompts())

	answer, err := engine.Ask(context.Background(), "Quel est le solde ?")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeExtractive, answer.Mode)
	assert.Contains(t, answer.Text, "Aucune information")
	assert.Equal(t, 0, vector.searches)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	engine, _ := newTestEngine(nil, nil)

	_, err := engine.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskRespectsTopK(t *testing.T) {
	engine, _ := newTestEngine(nil, retrievedFixture(), WithTopK(2))

	answer, err := engine.Ask(context.Background(), "Quel est le solde ?")
	require.NoError(t, err)

	assert.Len(t, answer.Retrieved, 2)
}

func TestSources(t *testing.T) {
	corpus := newMemCorpus()
	corpus.seed(seedEntry("facture.txt", "/docs/facture.pdf", "aaa"), "t")
	corpus.seed(seedEntry("releve.txt", "/docs/releve.pdf", "bbb"), "t")
	engine := NewQueryEngine(corpus, &stubVector{}, &stubEmbedder{dims: 4}, nil, testPrompts())

	names, err := engine.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"facture.txt", "releve.txt"}, names)
}

func TestHealth(t *testing.T) {
	corpus := newMemCorpus()
	corpus.seed(seedEntry("releve.txt", "/docs/releve.pdf", "aaa"), "t")
	vector := &stubVector{}
	require.NoError(t, vector.Add(context.Background(), []domain.RetrievalUnit{{ID: "u1"}}))

	embedder := &stubEmbedder{dims: 4}
	llm := &stubLLM{pingErr: errors.New("connection refused")}
	engine := NewQueryEngine(corpus, vector, embedder, llm, testPrompts())

	h := engine.Health(context.Background())

	assert.True(t, h.EmbeddingReady)
	assert.False(t, h.GenerationReady)
	assert.Equal(t, 1, h.CorpusDocuments)
	assert.Equal(t, 1, h.IndexedUnits)
}
