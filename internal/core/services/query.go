package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dossier-labs/dossier-cli/internal/core/domain"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
	"github.com/dossier-labs/dossier-cli/internal/core/ports/driving"
	"github.com/dossier-labs/dossier-cli/internal/logger"
)

// Ensure QueryEngine implements the interface.
var _ driving.QueryService = (*QueryEngine)(nil)

const (
	// DefaultTopK is the number of units retrieved per query.
	DefaultTopK = 5

	// DefaultGenerateTimeout bounds a single generation call. On expiry
	// the engine falls back to the extractive answer instead of blocking
	// the query indefinitely.
	DefaultGenerateTimeout = 120 * time.Second

	// defaultPingTimeout bounds capability health probes.
	defaultPingTimeout = 5 * time.Second
)

// QueryEngine answers questions grounded in the corpus: embed the
// question, retrieve the nearest units, synthesize an answer.
//
// Generation is attempted at most once per query. Any generation
// failure (unreachable service, error, timeout) degrades to the
// extractive fallback; it is never retried within the query.
type QueryEngine struct {
	corpus   driven.CorpusStore
	vector   driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore

	topK        int
	genTimeout  time.Duration
	temperature float64
}

// QueryOption configures the engine.
type QueryOption func(*QueryEngine)

// WithTopK sets how many units are retrieved per query.
func WithTopK(k int) QueryOption {
	return func(q *QueryEngine) {
		if k > 0 {
			q.topK = k
		}
	}
}

// WithGenerateTimeout bounds each generation call.
func WithGenerateTimeout(d time.Duration) QueryOption {
	return func(q *QueryEngine) {
		if d > 0 {
			q.genTimeout = d
		}
	}
}

// NewQueryEngine creates a new query engine. The LLM service is
// optional - when nil, all answers are extractive.
func NewQueryEngine(
	corpus driven.CorpusStore,
	vector driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts ...QueryOption,
) *QueryEngine {
	q := &QueryEngine{
		corpus:     corpus,
		vector:     vector,
		embedder:   embedder,
		llm:        llm,
		prompts:    prompts,
		topK:       DefaultTopK,
		genTimeout: DefaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Ask answers a question grounded in the corpus. Retrieval or
// generation failures degrade the answer rather than erroring; only an
// empty question is rejected.
func (q *QueryEngine) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("ask: %w: empty question", domain.ErrInvalidInput)
	}

	started := time.Now()

	retrieved := q.retrieve(ctx, question)
	if len(retrieved) == 0 {
		return &domain.Answer{
			Text:     q.prompt(driven.PromptNoInformation),
			Mode:     domain.ModeExtractive,
			Duration: time.Since(started),
		}, nil
	}

	answer := &domain.Answer{
		Sources:   citedSources(retrieved),
		Retrieved: retrieved,
	}

	if q.llm != nil {
		text, err := q.generate(ctx, question, retrieved)
		if err == nil {
			answer.Text = text
			answer.Mode = domain.ModeGenerative
			answer.Duration = time.Since(started)
			return answer, nil
		}
		logger.Warn("Generation failed, falling back to extractive answer: %v", err)
	}

	// Extractive fallback: the most relevant unit, verbatim.
	answer.Text = retrieved[0].Unit.Text
	answer.Mode = domain.ModeExtractive
	answer.Duration = time.Since(started)
	return answer, nil
}

// Health probes the external capabilities and reports index sizes.
func (q *QueryEngine) Health(ctx context.Context) domain.Health {
	h := domain.Health{IndexedUnits: q.vector.Len()}

	if entries, err := q.corpus.List(ctx); err == nil {
		h.CorpusDocuments = len(entries)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if q.embedder != nil && q.embedder.Ping(pingCtx) == nil {
		h.EmbeddingReady = true
	}
	if q.llm != nil && q.llm.Ping(pingCtx) == nil {
		h.GenerationReady = true
	}
	return h
}

// Sources returns the distinct corpus document names.
func (q *QueryEngine) Sources(ctx context.Context) ([]string, error) {
	entries, err := q.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.OutputName
	}
	return names, nil
}

// retrieve embeds the question and searches the vector index. Any
// failure on this path yields an empty result set, which the caller
// turns into the no-information answer.
func (q *QueryEngine) retrieve(ctx context.Context, question string) []domain.RetrievedUnit {
	if q.embedder == nil {
		return nil
	}
	embedding, err := q.embedder.Embed(ctx, question)
	if err != nil {
		logger.Warn("Question embedding failed: %v", err)
		return nil
	}
	retrieved, err := q.vector.Search(ctx, embedding, q.topK)
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		return nil
	}
	return retrieved
}

// generate runs one time-bounded generation call over the grounded
// prompt.
func (q *QueryEngine) generate(ctx context.Context, question string, retrieved []domain.RetrievedUnit) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, q.genTimeout)
	defer cancel()

	contexts := make([]string, len(retrieved))
	for i, r := range retrieved {
		contexts[i] = r.Unit.Text
	}
	prompt := fmt.Sprintf(q.prompt(driven.PromptGroundedAnswer),
		question, strings.Join(contexts, "\n\n"))

	text, err := q.llm.Generate(genCtx, prompt, driven.GenerateOptions{
		Temperature: q.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}
	return text, nil
}

// prompt loads a template, falling back to a bare marker if the store
// itself is broken.
func (q *QueryEngine) prompt(name string) string {
	tmpl, err := q.prompts.Load(name)
	if err != nil {
		logger.Warn("Loading prompt %s failed: %v", name, err)
		return name
	}
	return tmpl
}

// citedSources returns distinct document names in retrieval order.
func citedSources(retrieved []domain.RetrievedUnit) []string {
	seen := make(map[string]bool, len(retrieved))
	var names []string
	for _, r := range retrieved {
		if !seen[r.Unit.DocumentName] {
			seen[r.Unit.DocumentName] = true
			names = append(names, r.Unit.DocumentName)
		}
	}
	return names
}
