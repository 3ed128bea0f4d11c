// Command dossier ingests administrative documents into a searchable
// corpus and answers questions grounded in it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	configfile "github.com/dossier-labs/dossier-cli/internal/adapters/driven/config/file"
	corpusfile "github.com/dossier-labs/dossier-cli/internal/adapters/driven/corpus/file"
	embeddingollama "github.com/dossier-labs/dossier-cli/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/dossier-labs/dossier-cli/internal/adapters/driven/llm/ollama"
	"github.com/dossier-labs/dossier-cli/internal/adapters/driven/recognition/tesseract"
	"github.com/dossier-labs/dossier-cli/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/dossier-labs/dossier-cli/internal/adapters/driven/vector/memory"
	"github.com/dossier-labs/dossier-cli/internal/adapters/driving/cli"
	"github.com/dossier-labs/dossier-cli/internal/core/services"
	"github.com/dossier-labs/dossier-cli/internal/extractors"
	"github.com/dossier-labs/dossier-cli/internal/extractors/image"
	"github.com/dossier-labs/dossier-cli/internal/extractors/office"
	"github.com/dossier-labs/dossier-cli/internal/extractors/pdf"
	"github.com/dossier-labs/dossier-cli/internal/extractors/plaintext"
	"github.com/dossier-labs/dossier-cli/internal/logger"
	"github.com/dossier-labs/dossier-cli/internal/postprocessors/chunker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	// Services are built after flag parsing so --output and --workers
	// can shape construction.
	var store *sqlite.Store
	cli.SetBuilder(func(overrides cli.Overrides) (cli.Services, error) {
		built, s, err := buildServices(overrides)
		if err != nil {
			return cli.Services{}, err
		}
		store = s
		return built, nil
	})

	err := cli.Execute()
	if store != nil {
		store.Close()
	}
	return err
}

func buildServices(overrides cli.Overrides) (cli.Services, *sqlite.Store, error) {
	settings, err := configfile.LoadSettings(os.Getenv("DOSSIER_CONFIG_DIR"))
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("open index store: %w", err)
	}

	corpusDir := settings.CorpusDir
	if overrides.CorpusDir != "" {
		corpusDir = overrides.CorpusDir
	}
	corpus, err := corpusfile.NewStore(corpusDir, store)
	if err != nil {
		store.Close()
		return cli.Services{}, nil, fmt.Errorf("open corpus store: %w", err)
	}

	prompts, err := configfile.NewPromptStore("")
	if err != nil {
		store.Close()
		return cli.Services{}, nil, fmt.Errorf("open prompt store: %w", err)
	}

	recogniser := tesseract.New(tesseract.Config{
		BaseURL:           settings.Recognition.BaseURL,
		Languages:         settings.Recognition.Languages,
		RequestsPerSecond: settings.Recognition.RequestsPerSecond,
	})

	registry := extractors.NewRegistry(
		plaintext.New(),
		image.New(recogniser),
		pdf.New(recogniser),
		office.New(),
	)

	embedder := embeddingollama.NewEmbeddingService(embeddingollama.Config{
		BaseURL: settings.Ollama.BaseURL,
		Model:   settings.Ollama.EmbeddingModel,
	})
	llm := llmollama.NewLLMService(llmollama.LLMConfig{
		BaseURL: settings.Ollama.BaseURL,
		Model:   settings.Ollama.LLMModel,
	})

	vector := vectormemory.New()
	indexer := services.NewIndexer(corpus, store.UnitStore(), vector, embedder, chunker.New())

	if _, err := indexer.Load(context.Background()); err != nil {
		logger.Warn("could not restore retrieval index: %v", err)
	}

	ingest := services.NewIngestPipeline(registry, corpus, indexer,
		services.WithWorkers(settings.Ingest.Workers),
		services.WithWorkers(overrides.Workers))

	query := services.NewQueryEngine(corpus, vector, embedder, llm, prompts,
		services.WithTopK(settings.Query.TopK),
		services.WithGenerateTimeout(time.Duration(settings.Query.GenerateTimeoutSeconds)*time.Second))

	return cli.Services{
		Ingest: ingest,
		Query:  query,
		Index:  indexer,
	}, store, nil
}
