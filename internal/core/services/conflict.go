package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// artifactExt is the extension of every corpus artifact.
const artifactExt = ".txt"

// unsafeNameChars matches characters stripped from candidate output names.
var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)

// ConflictResolver enforces idempotent, loss-free ingestion. Given a
// source file and the current corpus index it decides whether to skip,
// proceed, or rename-and-store. Resolution is deterministic for a given
// index state and never discards an extraction result.
//
// Callers must serialize Resolve-then-Put sequences: two files racing
// for the same renamed slot would otherwise both be allocated it.
type ConflictResolver struct {
	corpus driven.CorpusStore
}

// NewConflictResolver creates a resolver over the given corpus store.
func NewConflictResolver(corpus driven.CorpusStore) *ConflictResolver {
	return &ConflictResolver{corpus: corpus}
}

// Resolve classifies a source file against the current index state.
//
// Case skip: the fingerprint is already indexed, from any path - this
// exact content was extracted before, so re-running ingestion performs
// zero redundant work. Case rename: the candidate base name is taken by
// a different fingerprint; the lowest unused integer suffix is
// allocated (gaps from removed artifacts are reused). Case clean: the
// base name is free.
func (r *ConflictResolver) Resolve(ctx context.Context, file domain.SourceFile) (*domain.Resolution, error) {
	if file.Fingerprint == "" {
		return nil, fmt.Errorf("resolve %s: %w: empty fingerprint", file.Path, domain.ErrInvalidInput)
	}

	base := CandidateBaseName(file.Path)

	prior, err := r.corpus.GetByFingerprint(ctx, file.Fingerprint)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup fingerprint: %w", err)
	}
	if prior != nil {
		return &domain.Resolution{
			Case:       domain.CaseSkip,
			BaseName:   base,
			PriorEntry: prior,
		}, nil
	}

	existing, err := r.corpus.Get(ctx, base)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup name %s: %w", base, err)
	}
	if existing == nil {
		return &domain.Resolution{
			Case:       domain.CaseClean,
			OutputName: base,
			BaseName:   base,
		}, nil
	}

	suffixed, err := r.nextFreeName(ctx, base)
	if err != nil {
		return nil, err
	}
	return &domain.Resolution{
		Case:       domain.CaseRename,
		OutputName: suffixed,
		BaseName:   base,
		PriorEntry: existing,
	}, nil
}

// nextFreeName probes the index for the lowest unused integer suffix.
func (r *ConflictResolver) nextFreeName(ctx context.Context, base string) (string, error) {
	stem := strings.TrimSuffix(base, artifactExt)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, artifactExt)
		_, err := r.corpus.Get(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probe name %s: %w", candidate, err)
		}
	}
}

// CandidateBaseName derives the deterministic artifact name for a source
// path: the file stem with unsafe characters replaced by underscores,
// plus the artifact extension.
func CandidateBaseName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	safe := unsafeNameChars.ReplaceAllString(stem, "_")
	if safe == "" {
		safe = "document"
	}
	return safe + artifactExt
}
