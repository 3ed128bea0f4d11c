package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the application configuration, read from a TOML file.
// Missing fields keep their defaults, so a partial file is valid.
type Settings struct {
	// CorpusDir is where extraction artifacts are written.
	CorpusDir string `toml:"corpus_dir"`

	// DataDir is where the index database lives.
	DataDir string `toml:"data_dir"`

	Ingest      IngestSettings      `toml:"ingest"`
	Query       QuerySettings       `toml:"query"`
	Ollama      OllamaSettings      `toml:"ollama"`
	Recognition RecognitionSettings `toml:"recognition"`
}

// IngestSettings configures the ingestion pipeline.
type IngestSettings struct {
	// Workers is the extraction parallelism for directory runs.
	Workers int `toml:"workers"`
}

// QuerySettings configures question answering.
type QuerySettings struct {
	// TopK is the number of retrieval units per query.
	TopK int `toml:"top_k"`

	// GenerateTimeoutSeconds bounds one generation call before the
	// answer falls back to the extractive mode.
	GenerateTimeoutSeconds int `toml:"generate_timeout_seconds"`
}

// OllamaSettings configures the embedding and generation services.
type OllamaSettings struct {
	BaseURL        string `toml:"base_url"`
	EmbeddingModel string `toml:"embedding_model"`
	LLMModel       string `toml:"llm_model"`
}

// RecognitionSettings configures the OCR service.
type RecognitionSettings struct {
	BaseURL string `toml:"base_url"`

	// Languages is the fixed OCR language set (e.g. "fra+ara+eng").
	Languages string `toml:"languages"`

	// RequestsPerSecond throttles recognition calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Ingest: IngestSettings{Workers: 4},
		Query: QuerySettings{
			TopK:                   5,
			GenerateTimeoutSeconds: 120,
		},
		Ollama: OllamaSettings{
			BaseURL:        "http://localhost:11434",
			EmbeddingModel: "mxbai-embed-large",
			LLMModel:       "llama3",
		},
		Recognition: RecognitionSettings{
			BaseURL:           "http://localhost:8884",
			Languages:         "fra+ara+eng",
			RequestsPerSecond: 2,
		},
	}
}

// LoadSettings reads the TOML configuration file, applying defaults for
// anything the file leaves unset. If configDir is empty, defaults to
// ~/.dossier/config.toml. A missing file is not an error.
func LoadSettings(configDir string) (Settings, error) {
	settings := DefaultSettings()

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return settings, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".dossier")
	}

	data, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse config: %w", err)
	}
	return settings, nil
}
