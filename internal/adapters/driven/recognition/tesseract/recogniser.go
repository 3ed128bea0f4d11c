// Package tesseract provides an optical recognition adapter backed by a
// tesseract HTTP service.
package tesseract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dossier-labs/dossier-cli/internal/core/ports/driven"
)

// Ensure Recogniser implements the interface.
var _ driven.Recogniser = (*Recogniser)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:8884"
	DefaultLanguages = "fra+ara+eng"
	DefaultTimeout   = 60 * time.Second

	// DefaultRequestsPerSecond throttles recognition calls; OCR is the
	// most expensive step in the pipeline and the service is shared.
	DefaultRequestsPerSecond = 2
)

// Config holds configuration for the recognition service.
type Config struct {
	// BaseURL is the recognition API base URL (default: http://localhost:8884).
	BaseURL string

	// Languages is the fixed language set (default: fra+ara+eng).
	// All documents in a corpus must use the same set.
	Languages string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond throttles calls to the service (default: 2).
	RequestsPerSecond float64
}

// Recogniser runs OCR through a tesseract HTTP service.
type Recogniser struct {
	client    *http.Client
	baseURL   string
	languages string
	limiter   *rate.Limiter
}

// recogniseRequest is the service request format.
type recogniseRequest struct {
	Image     string `json:"image"` // base64-encoded
	Languages string `json:"languages"`
}

// recogniseResponse is the service response format.
type recogniseResponse struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// New creates a new tesseract recogniser.
func New(cfg Config) *Recogniser {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Languages == "" {
		cfg.Languages = DefaultLanguages
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Recogniser{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		languages: cfg.Languages,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Recognise runs OCR over the given image bytes.
func (r *Recogniser) Recognise(ctx context.Context, image []byte) (*driven.Recognition, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limit: %w", err)
	}

	reqBody := recogniseRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		Languages: r.languages,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.baseURL+"/api/recognise",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("recognition error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("recognition error (status %d): %s", resp.StatusCode, string(body))
	}

	var recResp recogniseResponse
	if err := json.NewDecoder(resp.Body).Decode(&recResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	confidence := recResp.Confidence
	if confidence == 0 {
		confidence = -1
	}
	return &driven.Recognition{
		Text:       recResp.Text,
		Language:   recResp.Language,
		Confidence: confidence,
	}, nil
}

// Languages returns the fixed language set the service is configured for.
func (r *Recogniser) Languages() string {
	return r.languages
}

// Ping validates the service is reachable.
func (r *Recogniser) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("tesseract: failed to create ping request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("tesseract: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tesseract: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (r *Recogniser) Close() error {
	return nil
}
