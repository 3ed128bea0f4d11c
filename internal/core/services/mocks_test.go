package services

import (
	"context"
	"fmt"
	"sort"
	stdsync "sync"
	"time"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// --- Shared mock implementations for service tests ---

// memCorpus implements driven.CorpusStore in memory.
type memCorpus struct {
	mu      stdsync.Mutex
	entries map[string]domain.CorpusEntry
	texts   map[string]string
	putErr  error
}

var _ driven.CorpusStore = (*memCorpus)(nil)

func newMemCorpus() *memCorpus {
	return &memCorpus{
		entries: make(map[string]domain.CorpusEntry),
		texts:   make(map[string]string),
	}
}

func (c *memCorpus) Put(_ context.Context, record *domain.ExtractionRecord) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[record.OutputName] = domain.CorpusEntry{
		OutputName:  record.OutputName,
		SourcePath:  record.SourcePath,
		SourceName:  record.SourceName,
		Fingerprint: record.Fingerprint,
		Kind:        record.Kind,
		Language:    record.Language,
		TextLength:  len(record.Text),
		ExtractedAt: record.ExtractedAt,
	}
	c.texts[record.OutputName] = record.Text
	return nil
}

func (c *memCorpus) Get(_ context.Context, outputName string) (*domain.CorpusEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[outputName]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (c *memCorpus) GetByFingerprint(_ context.Context, fingerprint string) (*domain.CorpusEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.entries {
		if entry.Fingerprint == fingerprint {
			e := entry
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *memCorpus) List(_ context.Context) ([]domain.CorpusEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]domain.CorpusEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].OutputName < entries[j].OutputName
	})
	return entries, nil
}

func (c *memCorpus) ReadText(_ context.Context, outputName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.texts[outputName]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (c *memCorpus) RemoveAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.CorpusEntry)
	c.texts = make(map[string]string)
	return nil
}

func (c *memCorpus) Verify(_ context.Context) error { return nil }

func (c *memCorpus) RebuildIndex(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), nil
}

// seed registers an entry directly, bypassing Put.
func (c *memCorpus) seed(entry domain.CorpusEntry, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.OutputName] = entry
	c.texts[entry.OutputName] = text
}

// memUnits implements driven.UnitStore, recording mutations.
type memUnits struct {
	mu       stdsync.Mutex
	units    []domain.RetrievalUnit
	replaced bool
	cleared  bool
}

var _ driven.UnitStore = (*memUnits)(nil)

func (s *memUnits) SaveUnits(_ context.Context, units []domain.RetrievalUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append(s.units, units...)
	return nil
}

func (s *memUnits) ListUnits(_ context.Context) ([]domain.RetrievalUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RetrievalUnit, len(s.units))
	copy(out, s.units)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (s *memUnits) DeleteByDocument(_ context.Context, documentName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.units[:0]
	for _, u := range s.units {
		if u.DocumentName != documentName {
			kept = append(kept, u)
		}
	}
	s.units = kept
	return nil
}

func (s *memUnits) ReplaceAll(_ context.Context, units []domain.RetrievalUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append([]domain.RetrievalUnit(nil), units...)
	s.replaced = true
	return nil
}

func (s *memUnits) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = nil
	s.cleared = true
	return nil
}

// stubVector implements driven.VectorIndex with canned search results.
type stubVector struct {
	mu       stdsync.Mutex
	units    []domain.RetrievalUnit
	results  []domain.RetrievedUnit
	searches int
	replaces int
}

var _ driven.VectorIndex = (*stubVector)(nil)

func (v *stubVector) Add(_ context.Context, units []domain.RetrievalUnit) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.units = append(v.units, units...)
	return nil
}

func (v *stubVector) Search(_ context.Context, _ []float32, k int) ([]domain.RetrievedUnit, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searches++
	if k > len(v.results) {
		k = len(v.results)
	}
	return v.results[:k], nil
}

func (v *stubVector) Replace(_ context.Context, units []domain.RetrievalUnit) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.units = append([]domain.RetrievalUnit(nil), units...)
	v.replaces++
	return nil
}

func (v *stubVector) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.units)
}

func (v *stubVector) Close() error { return nil }

// stubEmbedder implements driven.EmbeddingService with fixed-size vectors.
type stubEmbedder struct {
	dims    int
	err     error
	pingErr error
	calls   int
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.calls++
	vec := make([]float32, e.dims)
	for i := range vec {
		vec[i] = float32(len(text)%7) + float32(i)
	}
	return vec, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int              { return e.dims }
func (e *stubEmbedder) ModelName() string            { return "stub-embed" }
func (e *stubEmbedder) Ping(_ context.Context) error { return e.pingErr }
func (e *stubEmbedder) Close() error                 { return nil }

// stubLLM implements driven.LLMService with a canned reply.
type stubLLM struct {
	reply   string
	err     error
	pingErr error
	delay   time.Duration
	calls   int
	lastIn  string
}

var _ driven.LLMService = (*stubLLM)(nil)

func (l *stubLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	l.calls++
	l.lastIn = prompt
	if l.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.delay):
		}
	}
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

func (l *stubLLM) ModelName() string            { return "stub-llm" }
func (l *stubLLM) Ping(_ context.Context) error { return l.pingErr }
func (l *stubLLM) Close() error                 { return nil }

// stubPrompts implements driven.PromptStore over a map.
type stubPrompts map[string]string

var _ driven.PromptStore = (stubPrompts)(nil)

func (p stubPrompts) Load(name string) (string, error) {
	tmpl, ok := p[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %s", name)
	}
	return tmpl, nil
}

func testPrompts() stubPrompts {
	return stubPrompts{
		driven.PromptGroundedAnswer: "Question: %s\nContexte: %s",
		driven.PromptNoInformation:  "Aucune information pertinente n'a été trouvée dans les documents.",
	}
}

// stubRegistry implements driven.ExtractorRegistry with fixed text.
type stubRegistry struct {
	text      string
	language  string
	failPaths map[string]error
}

var _ driven.ExtractorRegistry = (*stubRegistry)(nil)

func (r *stubRegistry) Extract(_ context.Context, file domain.SourceFile) (*driven.Extraction, error) {
	if err, ok := r.failPaths[file.Name()]; ok {
		return nil, err
	}
	return &driven.Extraction{Text: r.text, Language: r.language}, nil
}

// stubChunker implements driven.Chunker with a fixed span size in runes.
type stubChunker struct {
	size int
}

var _ driven.Chunker = (*stubChunker)(nil)

func (c *stubChunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	var spans []string
	for start := 0; start < len(runes); start += c.size {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, string(runes[start:end]))
	}
	return spans
}

// indexSpy implements driving.IndexService, recording calls.
type indexSpy struct {
	mu      stdsync.Mutex
	indexed []string
	reset   bool
	err     error
}

func (s *indexSpy) Reindex(_ context.Context) (int, error) { return 0, s.err }

func (s *indexSpy) IndexDocument(_ context.Context, outputName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.indexed = append(s.indexed, outputName)
	return 1, nil
}

func (s *indexSpy) Load(_ context.Context) (int, error) { return 0, s.err }

func (s *indexSpy) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset = true
	return s.err
}
