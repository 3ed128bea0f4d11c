// Package image extracts scanned images through optical recognition.
package image

import (
	"context"
	"fmt"
	"os"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles image files by delegating to the recognition
// capability. It carries no state of its own; the recogniser owns the
// language configuration.
type Extractor struct {
	recogniser driven.Recogniser
}

// New creates a new image extractor over the given recogniser.
func New(recogniser driven.Recogniser) *Extractor {
	return &Extractor{recogniser: recogniser}
}

// Kinds returns the file kinds this extractor handles.
func (e *Extractor) Kinds() []domain.FileKind {
	return []domain.FileKind{domain.FileKindImage}
}

// Extract reads the image and runs recognition over it.
func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) (*driven.Extraction, error) {
	if e.recogniser == nil {
		return nil, fmt.Errorf("extract %s: %w", file.Path, domain.ErrRecognitionUnavailable)
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", file.Path, domain.ErrExtractionFailed, err)
	}

	recognition, err := e.recogniser.Recognise(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("recognise %s: %w: %w", file.Path, domain.ErrExtractionFailed, err)
	}

	language := recognition.Language
	if language == "" {
		language = e.recogniser.Languages()
	}

	return &driven.Extraction{
		Text:     recognition.Text,
		Language: language,
	}, nil
}
