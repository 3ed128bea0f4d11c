// Package chunker provides fixed-size text splitting with overlap.
package chunker

import (
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// DefaultSize is the default number of characters per span.
const DefaultSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// Splitter cuts text into fixed-size overlapping spans. Boundaries are
// counted in runes so multi-byte characters are never cut in half.
type Splitter struct {
	size    int
	overlap int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithSize sets the span size in characters.
func WithSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.size = size
		}
	}
}

// WithOverlap sets the overlap between spans in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		size:    DefaultSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave forward progress.
	if s.overlap >= s.size {
		s.overlap = s.size / 4
	}
	return s
}

// Split cuts text into spans of at most the configured size,
// consecutive spans sharing the configured overlap.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.size - s.overlap
	spans := make([]string, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return spans
}
