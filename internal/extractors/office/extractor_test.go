package office

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "contrat.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []domain.FileKind{domain.FileKindOffice}, New().Kinds())
}

func TestExtractDocxParagraphs(t *testing.T) {
	path := writeDocx(t, `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>Contrat de location</t></r></p>
    <p><r><t>Le loyer mensuel est de </t></r><r><t>650 euros.</t></r></p>
  </body>
</document>`)

	result, err := New().Extract(context.Background(), domain.SourceFile{
		Path: path,
		Kind: domain.FileKindOffice,
	})
	require.NoError(t, err)

	assert.Equal(t, "Contrat de location\nLe loyer mensuel est de 650 euros.", result.Text)
}

func TestExtractDocxTables(t *testing.T) {
	path := writeDocx(t, `<?xml version="1.0"?>
<document>
  <body>
    <p><r><t>Échéancier</t></r></p>
    <tbl>
      <tr><tc><p><r><t>Mois</t></r></p></tc><tc><p><r><t>Montant</t></r></p></tc></tr>
      <tr><tc><p><r><t>Mars</t></r></p></tc><tc><p><r><t>650</t></r></p></tc></tr>
    </tbl>
  </body>
</document>`)

	result, err := New().Extract(context.Background(), domain.SourceFile{Path: path})
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Échéancier")
	assert.Contains(t, result.Text, "Mois | Montant")
	assert.Contains(t, result.Text, "Mars | 650")
}

func TestExtractDocxNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faux.docx")
	require.NoError(t, os.WriteFile(path, []byte("pas une archive zip"), 0o644))

	_, err := New().Extract(context.Background(), domain.SourceFile{Path: path})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractLegacyDocSalvage(t *testing.T) {
	// Binary junk around recognisable text runs.
	content := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0x00, 0x01}, []byte("Contrat de location")...)
	content = append(content, 0x00, 0x05, 0x01)
	content = append(content, []byte("Le locataire s'engage")...)
	content = append(content, 0x00, 0x00)

	path := filepath.Join(t.TempDir(), "ancien.doc")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	result, err := New().Extract(context.Background(), domain.SourceFile{Path: path})
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Contrat de location")
	assert.Contains(t, result.Text, "Le locataire s'engage")
}

func TestExtractUnknownExtension(t *testing.T) {
	_, err := New().Extract(context.Background(), domain.SourceFile{Path: "/docs/notes.odt"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
