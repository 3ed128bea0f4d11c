package driven

import (
	"context"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// Extractor converts one source file of a known kind into plain text plus
// extraction metadata. Each extractor handles specific file kinds; the
// registry dispatches over kinds exhaustively.
type Extractor interface {
	// Kinds returns the file kinds this extractor handles.
	Kinds() []domain.FileKind

	// Extract reads the file and returns its text and a language hint.
	// Failures are wrapped as domain.ErrExtractionFailed so callers can
	// continue the batch.
	Extract(ctx context.Context, file domain.SourceFile) (*Extraction, error)
}

// Extraction is the output of one extraction.
type Extraction struct {
	// Text is the extracted plain text, whitespace-normalised.
	Text string

	// Language is the detected or configured language hint (e.g. "fra+ara").
	Language string
}

// ExtractorRegistry selects the extractor for a source file kind.
type ExtractorRegistry interface {
	// Extract dispatches to the extractor registered for the file kind.
	// Unknown kinds fail with domain.ErrUnsupportedFormat.
	Extract(ctx context.Context, file domain.SourceFile) (*Extraction, error)
}
