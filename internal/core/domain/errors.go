package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file kind no extractor handles.
	// The file is skipped and reported; the batch continues.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates recognition or parsing failed for a file.
	// The file is skipped and reported; the batch continues.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrIndexInconsistent indicates the corpus index and the on-disk
	// artifact set disagree. It is surfaced, never silently repaired,
	// since silent repair could hide data loss.
	ErrIndexInconsistent = errors.New("corpus index inconsistent")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or unreachable. Semantic retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the generation capability errored or
	// timed out. The synthesizer falls back to an extractive answer.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrRecognitionUnavailable indicates the OCR capability is not configured.
	// Image extraction is disabled without it.
	ErrRecognitionUnavailable = errors.New("recognition service unavailable")

	// ErrRetrievalUnavailable indicates the vector index is empty or the
	// embedding capability is down. Retrieval returns no units and the
	// synthesizer answers in fallback mode.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)
