package domain

import "time"

// RetrievalUnit is a bounded span of text from exactly one corpus document,
// indexed independently for semantic search. Units are created at index-build
// time and destroyed on full reindex.
type RetrievalUnit struct {
	// ID is the unique identifier for the unit.
	ID string

	// DocumentName is the corpus artifact this unit was cut from,
	// used for citation.
	DocumentName string

	// Position is the ordinal position within the document.
	Position int

	// Sequence is the global insertion order across the whole index.
	// Ties in similarity are broken by lower sequence for determinism.
	Sequence int

	// Text is the unit content.
	Text string

	// Embedding is the vector representation, owned by this unit and
	// immutable once computed.
	Embedding []float32
}

// RetrievedUnit pairs a retrieval unit with its relevance score.
type RetrievedUnit struct {
	Unit  RetrievalUnit
	Score float64
}

// AnswerMode distinguishes how an answer was produced so callers can
// render generative and extractive answers differently.
type AnswerMode string

const (
	// ModeGenerative marks answers produced by the generation capability.
	ModeGenerative AnswerMode = "generative"

	// ModeExtractive marks deterministic fallback answers assembled from
	// retrieved text without the generation capability.
	ModeExtractive AnswerMode = "extractive"
)

// Answer is the result of one query. Ephemeral: constructed per query,
// never persisted.
type Answer struct {
	// Text is the synthesized answer.
	Text string

	// Sources lists the distinct corpus document names the answer cites,
	// in retrieval order.
	Sources []string

	// Mode records which strategy produced the answer.
	Mode AnswerMode

	// Retrieved holds the scored units the answer was grounded on.
	Retrieved []RetrievedUnit

	// Duration is the query processing time.
	Duration time.Duration
}

// Health reports availability of the external capabilities and index sizes.
type Health struct {
	// GenerationReady is true when the generation capability responds.
	GenerationReady bool

	// EmbeddingReady is true when the embedding capability responds.
	EmbeddingReady bool

	// CorpusDocuments is the number of active corpus artifacts.
	CorpusDocuments int

	// IndexedUnits is the number of retrieval units in the vector index.
	IndexedUnits int
}
