package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// fakeIndex implements Index in memory.
type fakeIndex struct {
	entries map[string]domain.CorpusEntry
	saveErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[string]domain.CorpusEntry)}
}

func (i *fakeIndex) SaveEntry(_ context.Context, entry domain.CorpusEntry) error {
	if i.saveErr != nil {
		return i.saveErr
	}
	i.entries[entry.OutputName] = entry
	return nil
}

func (i *fakeIndex) GetEntry(_ context.Context, outputName string) (*domain.CorpusEntry, error) {
	entry, ok := i.entries[outputName]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (i *fakeIndex) GetEntryByFingerprint(_ context.Context, fingerprint string) (*domain.CorpusEntry, error) {
	for _, entry := range i.entries {
		if entry.Fingerprint == fingerprint {
			e := entry
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (i *fakeIndex) ListEntries(_ context.Context) ([]domain.CorpusEntry, error) {
	var entries []domain.CorpusEntry
	for _, entry := range i.entries {
		entries = append(entries, entry)
	}
	return entries, nil
}

func (i *fakeIndex) DeleteEntry(_ context.Context, outputName string) error {
	delete(i.entries, outputName)
	return nil
}

func (i *fakeIndex) ClearEntries(_ context.Context) error {
	i.entries = make(map[string]domain.CorpusEntry)
	return nil
}

func testRecord() *domain.ExtractionRecord {
	return &domain.ExtractionRecord{
		OutputName:  "releve.txt",
		SourcePath:  "/docs/releve.pdf",
		SourceName:  "releve.pdf",
		Fingerprint: "aaa",
		Kind:        domain.FileKindPDF,
		Language:    "fra",
		Text:        "Solde au 31 mars: 1200 euros.",
		ExtractedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func newTestStore(t *testing.T) (*Store, *fakeIndex) {
	t.Helper()
	index := newFakeIndex()
	store, err := NewStore(t.TempDir(), index)
	require.NoError(t, err)
	return store, index
}

func TestPutWritesHeaderedArtifact(t *testing.T) {
	store, index := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord()))

	data, err := os.ReadFile(filepath.Join(store.Dir(), "releve.txt"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Source File: releve.pdf\n")
	assert.Contains(t, content, "Source Path: /docs/releve.pdf\n")
	assert.Contains(t, content, "Fingerprint: aaa\n")
	assert.Contains(t, content, "File Kind: pdf\n")
	assert.Contains(t, content, "Language: fra\n")
	assert.Contains(t, content, "Extraction Date: 2026-03-14 10:30:00\n")
	assert.True(t, strings.HasSuffix(content, "\n\nSolde au 31 mars: 1200 euros."))

	entry, ok := index.entries["releve.txt"]
	require.True(t, ok)
	assert.Equal(t, len("Solde au 31 mars: 1200 euros."), entry.TextLength)
}

func TestPutRemovesArtifactWhenIndexFails(t *testing.T) {
	index := newFakeIndex()
	index.saveErr = errors.New("database locked")
	store, err := NewStore(t.TempDir(), index)
	require.NoError(t, err)

	err = store.Put(context.Background(), testRecord())
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(store.Dir(), "releve.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Put(context.Background(), testRecord()))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".tmp-"),
			"temp file left behind: %s", entry.Name())
	}
}

func TestReadTextReturnsBodyOnly(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord()))

	text, err := store.ReadText(ctx, "releve.txt")
	require.NoError(t, err)
	assert.Equal(t, "Solde au 31 mars: 1200 euros.", text)
}

func TestReadTextPreservesBlankLinesInBody(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	record := testRecord()
	record.Text = "premier paragraphe\n\nsecond paragraphe"
	require.NoError(t, store.Put(ctx, record))

	text, err := store.ReadText(ctx, "releve.txt")
	require.NoError(t, err)
	assert.Equal(t, "premier paragraphe\n\nsecond paragraphe", text)
}

func TestReadTextMissingArtifact(t *testing.T) {
	store, index := newTestStore(t)
	ctx := context.Background()

	_, err := store.ReadText(ctx, "absent.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Indexed but deleted from disk: an inconsistency, not a not-found.
	index.entries["fantome.txt"] = domain.CorpusEntry{OutputName: "fantome.txt"}
	_, err = store.ReadText(ctx, "fantome.txt")
	assert.ErrorIs(t, err, domain.ErrIndexInconsistent)
}

func TestRemoveAll(t *testing.T) {
	store, index := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord()))
	require.NoError(t, store.RemoveAll(ctx))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, index.entries)
}

func TestVerifyConsistent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord()))
	assert.NoError(t, store.Verify(ctx))
}

func TestRebuildIndexRecoversEntries(t *testing.T) {
	store, index := newTestStore(t)
	ctx := context.Background()

	record := testRecord()
	require.NoError(t, store.Put(ctx, record))

	// Simulate index loss.
	require.NoError(t, index.ClearEntries(ctx))

	recovered, err := store.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)

	entry, ok := index.entries["releve.txt"]
	require.True(t, ok)
	assert.Equal(t, record.SourcePath, entry.SourcePath)
	assert.Equal(t, record.SourceName, entry.SourceName)
	assert.Equal(t, record.Fingerprint, entry.Fingerprint)
	assert.Equal(t, record.Kind, entry.Kind)
	assert.Equal(t, record.Language, entry.Language)
	assert.Equal(t, len(record.Text), entry.TextLength)
	assert.True(t, entry.ExtractedAt.Equal(record.ExtractedAt))
}

func TestRebuildIndexReportsUnparseableArtifacts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "casse.txt"),
		[]byte("pas d'en-tête du tout"), 0o644))

	_, err := store.RebuildIndex(ctx)
	require.ErrorIs(t, err, domain.ErrIndexInconsistent)
	assert.Contains(t, err.Error(), "casse.txt")
}

func TestVerifyReportsDisagreements(t *testing.T) {
	store, index := newTestStore(t)
	ctx := context.Background()

	// On disk but not indexed.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "orphelin.txt"),
		[]byte("en-tête\n\ncorps"), 0o644))
	// Indexed but not on disk.
	index.entries["fantome.txt"] = domain.CorpusEntry{OutputName: "fantome.txt"}

	err := store.Verify(ctx)
	require.ErrorIs(t, err, domain.ErrIndexInconsistent)
	assert.Contains(t, err.Error(), "orphelin.txt")
	assert.Contains(t, err.Error(), "fantome.txt")
}
