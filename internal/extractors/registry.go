package extractors

import (
	"context"
	"fmt"
	"unicode"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// MinSignificantChars is the minimum number of non-whitespace characters
// an extraction must yield to count as successful. Anything below it is
// treated as a failed extraction, not an empty document.
const MinSignificantChars = 10

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction over file kinds.
type Registry struct {
	byKind map[domain.FileKind]driven.Extractor
}

// NewRegistry creates a registry over the given extractors. A later
// extractor claiming an already-registered kind wins.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byKind: make(map[domain.FileKind]driven.Extractor)}
	for _, extractor := range extractors {
		for _, kind := range extractor.Kinds() {
			r.byKind[kind] = extractor
		}
	}
	return r
}

// Extract dispatches to the extractor registered for the file kind and
// applies the minimum-content rule to its result.
func (r *Registry) Extract(ctx context.Context, file domain.SourceFile) (*driven.Extraction, error) {
	extractor, ok := r.byKind[file.Kind]
	if !ok {
		return nil, fmt.Errorf("extract %s: %w: no extractor for kind %s",
			file.Path, domain.ErrUnsupportedFormat, file.Kind)
	}

	result, err := extractor.Extract(ctx, file)
	if err != nil {
		return nil, err
	}

	if n := SignificantLen(result.Text); n < MinSignificantChars {
		return nil, fmt.Errorf("extract %s: %w: only %d significant characters",
			file.Path, domain.ErrExtractionFailed, n)
	}
	return result, nil
}

// SignificantLen counts the non-whitespace characters in text.
func SignificantLen(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
