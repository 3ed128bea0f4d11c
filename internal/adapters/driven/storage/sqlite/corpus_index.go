package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
)

// SaveEntry stores or updates a corpus index entry.
func (s *Store) SaveEntry(ctx context.Context, entry domain.CorpusEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corpus_entries (output_name, source_path, source_name, fingerprint, kind, language, text_length, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(output_name) DO UPDATE SET
			source_path = excluded.source_path,
			source_name = excluded.source_name,
			fingerprint = excluded.fingerprint,
			kind = excluded.kind,
			language = excluded.language,
			text_length = excluded.text_length,
			extracted_at = excluded.extracted_at
	`, entry.OutputName, entry.SourcePath, entry.SourceName, entry.Fingerprint,
		string(entry.Kind), entry.Language, entry.TextLength, entry.ExtractedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving corpus entry: %w", err)
	}
	return nil
}

// GetEntry retrieves a corpus entry by output name.
func (s *Store) GetEntry(ctx context.Context, outputName string) (*domain.CorpusEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT output_name, source_path, source_name, fingerprint, kind, language, text_length, extracted_at
		FROM corpus_entries WHERE output_name = ?
	`, outputName)
	return scanEntry(row)
}

// GetEntryByFingerprint retrieves the corpus entry for a content fingerprint.
func (s *Store) GetEntryByFingerprint(ctx context.Context, fingerprint string) (*domain.CorpusEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT output_name, source_path, source_name, fingerprint, kind, language, text_length, extracted_at
		FROM corpus_entries WHERE fingerprint = ?
	`, fingerprint)
	return scanEntry(row)
}

// ListEntries returns all corpus entries ordered by output name.
func (s *Store) ListEntries(ctx context.Context) ([]domain.CorpusEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT output_name, source_path, source_name, fingerprint, kind, language, text_length, extracted_at
		FROM corpus_entries ORDER BY output_name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing corpus entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CorpusEntry
	for rows.Next() {
		var entry domain.CorpusEntry
		var kind string
		var extractedAt sql.NullTime
		if err := rows.Scan(&entry.OutputName, &entry.SourcePath, &entry.SourceName,
			&entry.Fingerprint, &kind, &entry.Language, &entry.TextLength, &extractedAt); err != nil {
			return nil, fmt.Errorf("scanning corpus entry: %w", err)
		}
		entry.Kind = domain.FileKind(kind)
		if extractedAt.Valid {
			entry.ExtractedAt = extractedAt.Time
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteEntry removes one corpus entry.
func (s *Store) DeleteEntry(ctx context.Context, outputName string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM corpus_entries WHERE output_name = ?", outputName)
	if err != nil {
		return fmt.Errorf("deleting corpus entry: %w", err)
	}
	return nil
}

// ClearEntries removes every corpus entry.
func (s *Store) ClearEntries(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM corpus_entries")
	if err != nil {
		return fmt.Errorf("clearing corpus entries: %w", err)
	}
	return nil
}

func scanEntry(row *sql.Row) (*domain.CorpusEntry, error) {
	var entry domain.CorpusEntry
	var kind string
	var extractedAt sql.NullTime
	if err := row.Scan(&entry.OutputName, &entry.SourcePath, &entry.SourceName,
		&entry.Fingerprint, &kind, &entry.Language, &entry.TextLength, &extractedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning corpus entry: %w", err)
	}
	entry.Kind = domain.FileKind(kind)
	if extractedAt.Valid {
		entry.ExtractedAt = extractedAt.Time
	}
	return &entry, nil
}
