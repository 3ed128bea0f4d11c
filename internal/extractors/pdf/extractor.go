// Package pdf extracts PDF documents, preferring the embedded text layer
// and falling back to optical recognition for scanned files.
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
	"github.com/dossier-labs/dossier-cli/internal/logger"
)

// TextLayerThreshold is the minimum number of significant characters the
// embedded text layer must yield before it is trusted. Scanned PDFs often
// carry a near-empty layer of artifacts; below the threshold the whole
// document goes through recognition instead.
const TextLayerThreshold = 50

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF files. The recogniser is optional; without it,
// scanned PDFs fail extraction instead of silently yielding artifacts.
type Extractor struct {
	recogniser driven.Recogniser
}

// New creates a new PDF extractor. recogniser may be nil.
func New(recogniser driven.Recogniser) *Extractor {
	return &Extractor{recogniser: recogniser}
}

// Kinds returns the file kinds this extractor handles.
func (e *Extractor) Kinds() []domain.FileKind {
	return []domain.FileKind{domain.FileKindPDF}
}

// Extract reads the text layer and falls back to recognition when the
// layer is absent or insignificant.
func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) (*driven.Extraction, error) {
	pages, err := e.textLayer(file.Path)
	if err == nil && significantLen(pages) >= TextLayerThreshold {
		return &driven.Extraction{Text: joinPages(pages)}, nil
	}
	if err != nil {
		logger.Debug("Text layer of %s unreadable (%v), trying recognition", file.Path, err)
	}

	if e.recogniser == nil {
		return nil, fmt.Errorf("extract %s: %w: no usable text layer and recognition unavailable",
			file.Path, domain.ErrExtractionFailed)
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
	return &driven.Extraction{Text: recognition.Text, Language: language}, nil
}

// textLayer returns the per-page embedded text. The parser panics on
// some malformed files, so the recover converts those into errors.
func (e *Extractor) textLayer(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One broken page does not invalidate the rest.
			text = ""
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}

// joinPages concatenates page texts with page markers so provenance of a
// passage within the document stays visible.
func joinPages(pages []string) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n%s", i+1, page)
	}
	return strings.TrimSpace(b.String())
}

func significantLen(pages []string) int {
	n := 0
	for _, page := range pages {
		for _, r := range page {
			if !strings.ContainsRune(" \t\n\r\f\v", r) {
				n++
			}
		}
	}
	return n
}
