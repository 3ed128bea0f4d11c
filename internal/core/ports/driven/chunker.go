package driven

// Chunker splits document text into bounded, overlapping spans that
// become retrieval units.
type Chunker interface {
	// Split cuts text into spans no longer than the configured unit
	// length. Empty text produces no spans.
	Split(text string) []string
}
