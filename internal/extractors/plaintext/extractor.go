// Package plaintext extracts text files, decoding legacy encodings.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files. Administrative exports frequently
// arrive in Windows-1252 or UTF-16, so decoding falls through a chain of
// encodings rather than assuming UTF-8.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kinds returns the file kinds this extractor handles.
func (e *Extractor) Kinds() []domain.FileKind {
	return []domain.FileKind{domain.FileKindText}
}

// Extract reads and decodes the file.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile) (*driven.Extraction, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", file.Path, domain.ErrExtractionFailed, err)
	}

	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", file.Path, domain.ErrExtractionFailed, err)
	}

	return &driven.Extraction{Text: normalise(text)}, nil
}

// decode tries UTF-8, then UTF-16 (by BOM), then Windows-1252, then
// Latin-1. Latin-1 maps every byte so the chain always terminates.
func decode(data []byte) (string, error) {
	if hasUTF16BOM(data) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := decoder.Bytes(data)
		if err == nil {
			return string(out), nil
		}
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
		return string(out), nil
	}

	out, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// normalise unifies line endings and trims outer whitespace.
func normalise(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
