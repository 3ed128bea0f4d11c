package domain

import (
	"path/filepath"
	"time"
)

// SourceFile identifies an input file observed during an ingestion scan.
// Identity is the pair (absolute path, content fingerprint); the fingerprint
// alone identifies the content independent of path or name.
type SourceFile struct {
	// Path is the absolute path of the file.
	Path string

	// Fingerprint is the SHA-256 hex digest of the file content.
	Fingerprint string

	// Kind is the detected file kind.
	Kind FileKind

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file modification time at observation.
	ModTime time.Time
}

// Name returns the base name of the source file.
func (f SourceFile) Name() string {
	return filepath.Base(f.Path)
}

// ExtractionRecord is the result of successfully extracting one source file.
// At most one record is active per distinct content fingerprint.
type ExtractionRecord struct {
	// OutputName is the artifact filename allocated by conflict resolution.
	OutputName string

	// SourcePath is the absolute path of the originating file.
	SourcePath string

	// SourceName is the base name of the originating file.
	SourceName string

	// Fingerprint is the SHA-256 hex digest of the source content.
	Fingerprint string

	// Kind is the detected file kind.
	Kind FileKind

	// Language is the detected or configured language hint (e.g. "fra+ara").
	Language string

	// Text is the extracted plain text.
	Text string

	// ExtractedAt is when extraction completed.
	ExtractedAt time.Time
}

// CorpusEntry maps an artifact filename to its extraction provenance.
// It carries everything needed for conflict detection and listing; the
// full text lives in the artifact itself.
type CorpusEntry struct {
	// OutputName is the artifact filename (index key).
	OutputName string

	// SourcePath is the absolute path of the originating file.
	SourcePath string

	// SourceName is the base name of the originating file.
	SourceName string

	// Fingerprint is the SHA-256 hex digest of the source content.
	Fingerprint string

	// Kind is the detected file kind.
	Kind FileKind

	// Language is the detected language hint.
	Language string

	// TextLength is the extracted text length in bytes.
	TextLength int

	// ExtractedAt is when extraction completed.
	ExtractedAt time.Time
}
