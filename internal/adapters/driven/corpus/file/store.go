// Package file stores corpus artifacts as provenance-headed text files
// on disk, with the index kept in SQLite.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
	"github.com/dossier-labs/dossier-cli/internal/logger"
)

// timeLayout is the extraction date format used in artifact headers.
const timeLayout = "2006-01-02 15:04:05"

// Index persists corpus entries. Implemented by the SQLite store.
type Index interface {
	SaveEntry(ctx context.Context, entry domain.CorpusEntry) error
	GetEntry(ctx context.Context, outputName string) (*domain.CorpusEntry, error)
	GetEntryByFingerprint(ctx context.Context, fingerprint string) (*domain.CorpusEntry, error)
	ListEntries(ctx context.Context) ([]domain.CorpusEntry, error)
	DeleteEntry(ctx context.Context, outputName string) error
	ClearEntries(ctx context.Context) error
}

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// Store keeps artifacts under one flat directory. Writes go through a
// temporary file and a rename, so a crash never leaves a half-written
// artifact behind; the index entry is registered only after the rename.
type Store struct {
	dir   string
	index Index
}

// NewStore creates a corpus store writing artifacts under dir.
// If dir is empty, defaults to ~/.dossier/corpus.
func NewStore(dir string, index Index) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".dossier", "corpus")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating corpus directory: %w", err)
	}
	return &Store{dir: dir, index: index}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put writes the artifact durably and then registers the index entry.
func (s *Store) Put(ctx context.Context, record *domain.ExtractionRecord) error {
	if record == nil || record.OutputName == "" {
		return fmt.Errorf("put artifact: %w", domain.ErrInvalidInput)
	}

	path := filepath.Join(s.dir, record.OutputName)
	if err := writeAtomic(path, renderArtifact(record)); err != nil {
		return fmt.Errorf("write artifact %s: %w", record.OutputName, err)
	}

	entry := domain.CorpusEntry{
		OutputName:  record.OutputName,
		SourcePath:  record.SourcePath,
		SourceName:  record.SourceName,
		Fingerprint: record.Fingerprint,
		Kind:        record.Kind,
		Language:    record.Language,
		TextLength:  len(record.Text),
		ExtractedAt: record.ExtractedAt,
	}
	if err := s.index.SaveEntry(ctx, entry); err != nil {
		// Unregistered artifacts are orphans; remove so the index and
		// the directory stay consistent.
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Warn("Removing orphan artifact %s failed: %v", path, rmErr)
		}
		return fmt.Errorf("register artifact %s: %w", record.OutputName, err)
	}
	return nil
}

// Get returns the index entry for an output name.
func (s *Store) Get(ctx context.Context, outputName string) (*domain.CorpusEntry, error) {
	return s.index.GetEntry(ctx, outputName)
}

// GetByFingerprint returns the entry for a content fingerprint.
func (s *Store) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.CorpusEntry, error) {
	return s.index.GetEntryByFingerprint(ctx, fingerprint)
}

// List enumerates all active entries ordered by output name.
func (s *Store) List(ctx context.Context) ([]domain.CorpusEntry, error) {
	return s.index.ListEntries(ctx)
}

// ReadText returns the extracted text body of an artifact.
func (s *Store) ReadText(ctx context.Context, outputName string) (string, error) {
	if _, err := s.index.GetEntry(ctx, outputName); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, outputName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("artifact %s: %w: indexed but missing on disk",
				outputName, domain.ErrIndexInconsistent)
		}
		return "", fmt.Errorf("read artifact %s: %w", outputName, err)
	}

	_, body, found := strings.Cut(string(data), "\n\n")
	if !found {
		return "", fmt.Errorf("artifact %s: %w: missing header separator",
			outputName, domain.ErrIndexInconsistent)
	}
	return body, nil
}

// RemoveAll clears the artifacts and the index.
func (s *Store) RemoveAll(ctx context.Context) error {
	names, err := s.artifactNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("remove artifact %s: %w", name, err)
		}
	}
	if err := s.index.ClearEntries(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

// Verify compares the on-disk artifact set against the index.
// Disagreements are reported, never repaired.
func (s *Store) Verify(ctx context.Context) error {
	entries, err := s.index.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list index: %w", err)
	}
	names, err := s.artifactNames()
	if err != nil {
		return err
	}

	onDisk := make(map[string]bool, len(names))
	for _, name := range names {
		onDisk[name] = true
	}
	indexed := make(map[string]bool, len(entries))
	for _, entry := range entries {
		indexed[entry.OutputName] = true
	}

	var problems []string
	for _, entry := range entries {
		if !onDisk[entry.OutputName] {
			problems = append(problems, fmt.Sprintf("%s: indexed but missing on disk", entry.OutputName))
		}
	}
	for _, name := range names {
		if !indexed[name] {
			problems = append(problems, fmt.Sprintf("%s: on disk but not indexed", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrIndexInconsistent, strings.Join(problems, "; "))
	}
	return nil
}

// RebuildIndex reconstructs the index from the artifact headers on
// disk, replacing the prior entries. Artifacts whose header cannot be
// parsed are reported, not silently dropped.
func (s *Store) RebuildIndex(ctx context.Context) (int, error) {
	names, err := s.artifactNames()
	if err != nil {
		return 0, err
	}

	entries := make([]domain.CorpusEntry, 0, len(names))
	var problems []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return 0, fmt.Errorf("read artifact %s: %w", name, err)
		}
		entry, err := parseArtifact(name, string(data))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		entries = append(entries, *entry)
	}
	if len(problems) > 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrIndexInconsistent, strings.Join(problems, "; "))
	}

	if err := s.index.ClearEntries(ctx); err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}
	for _, entry := range entries {
		if err := s.index.SaveEntry(ctx, entry); err != nil {
			return 0, fmt.Errorf("register %s: %w", entry.OutputName, err)
		}
	}
	logger.Info("Rebuilt corpus index: %d entries from %d artifacts", len(entries), len(names))
	return len(entries), nil
}

// artifactNames lists the artifact files in the corpus directory.
func (s *Store) artifactNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// renderArtifact builds the artifact content: a provenance header, one
// blank line, then the extracted text.
func renderArtifact(record *domain.ExtractionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source File: %s\n", record.SourceName)
	fmt.Fprintf(&b, "Source Path: %s\n", record.SourcePath)
	fmt.Fprintf(&b, "Fingerprint: %s\n", record.Fingerprint)
	fmt.Fprintf(&b, "File Kind: %s\n", record.Kind)
	fmt.Fprintf(&b, "Language: %s\n", record.Language)
	fmt.Fprintf(&b, "Extraction Date: %s\n", record.ExtractedAt.Format(timeLayout))
	b.WriteString("\n")
	b.WriteString(record.Text)
	return b.String()
}

// parseArtifact recovers an index entry from an artifact's provenance
// header. Inverse of renderArtifact.
func parseArtifact(outputName, content string) (*domain.CorpusEntry, error) {
	header, body, found := strings.Cut(content, "\n\n")
	if !found {
		return nil, fmt.Errorf("missing header separator")
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		fields[key] = value
	}

	for _, required := range []string{"Source File", "Source Path", "Fingerprint", "File Kind"} {
		if fields[required] == "" {
			return nil, fmt.Errorf("missing header field %q", required)
		}
	}

	extractedAt, err := time.Parse(timeLayout, fields["Extraction Date"])
	if err != nil {
		return nil, fmt.Errorf("parse extraction date: %w", err)
	}

	return &domain.CorpusEntry{
		OutputName:  outputName,
		SourcePath:  fields["Source Path"],
		SourceName:  fields["Source File"],
		Fingerprint: fields["Fingerprint"],
		Kind:        domain.FileKind(fields["File Kind"]),
		Language:    fields["Language"],
		TextLength:  len(body),
		ExtractedAt: extractedAt,
	}, nil
}

// writeAtomic writes content to path via a temp file and rename.
func writeAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
