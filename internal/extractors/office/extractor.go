// Package office extracts Word documents, both the OOXML format and the
// legacy binary one.
package office

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Word documents. DOCX files are read properly from
// their XML; legacy DOC files get a best-effort text salvage, which is
// as far as the binary format is supported.
type Extractor struct{}

// New creates a new office document extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kinds returns the file kinds this extractor handles.
func (e *Extractor) Kinds() []domain.FileKind {
	return []domain.FileKind{domain.FileKindOffice}
}

// Extract dispatches on the concrete extension.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile) (*driven.Extraction, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(file.Path)) {
	case ".docx":
		text, err = extractDocx(file.Path)
	case ".doc":
		text, err = salvageLegacyDoc(file.Path)
	default:
		return nil, fmt.Errorf("extract %s: %w", file.Path, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w: %w", file.Path, domain.ErrExtractionFailed, err)
	}
	return &driven.Extraction{Text: text}, nil
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

// extractDocx reads paragraphs and tables from word/document.xml.
func extractDocx(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer reader.Close()

	content, err := readArchiveFile(&reader.Reader, "word/document.xml")
	if err != nil {
		return "", err
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var b strings.Builder
	for _, para := range doc.Body.Paragraphs {
		if text := paragraphText(para); text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				var cellText []string
				for _, para := range cell.Paragraphs {
					if text := paragraphText(para); text != "" {
						cellText = append(cellText, text)
					}
				}
				cells = append(cells, strings.Join(cellText, " "))
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.Join(cells, " | "))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func paragraphText(para paragraph) string {
	var b strings.Builder
	for _, r := range para.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// minRunLen is the shortest printable run kept by the legacy salvage.
const minRunLen = 4

// salvageLegacyDoc pulls printable text runs out of a binary DOC file.
// The compound-document structure is not parsed; formatting noise around
// the text is discarded by keeping only runs of reasonable length.
func salvageLegacyDoc(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read doc: %w", err)
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode doc: %w", err)
	}

	var (
		lines []string
		cur   []rune
	)
	flush := func() {
		if len(cur) >= minRunLen && hasLetter(cur) {
			lines = append(lines, strings.TrimSpace(string(cur)))
		}
		cur = cur[:0]
	}
	for _, r := range string(decoded) {
		if unicode.IsPrint(r) && r != '�' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()

	return strings.Join(lines, "\n"), nil
}

func hasLetter(runes []rune) bool {
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
