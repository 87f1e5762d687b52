package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rahadian/sift"
)

// EmbeddingOption configures an Embedding provider.
type EmbeddingOption func(*Embedding)

// WithEmbeddingBaseURL overrides the API base URL (default DefaultBaseURL).
// The /embeddings path is appended automatically.
func WithEmbeddingBaseURL(url string) EmbeddingOption {
	return func(e *Embedding) { e.baseURL = url }
}

// WithEmbeddingHTTPClient sets a custom HTTP client.
func WithEmbeddingHTTPClient(client *http.Client) EmbeddingOption {
	return func(e *Embedding) { e.client = client }
}

// WithDimensions requests reduced-dimension embeddings and reports that
// size from Dimensions. Only set this for models that support the
// dimensions parameter; older models reject it.
func WithDimensions(n int) EmbeddingOption {
	return func(e *Embedding) {
		e.dims = n
		e.sendDims = true
	}
}

// WithEmbeddingLogger sets a structured logger for the provider.
func WithEmbeddingLogger(l *slog.Logger) EmbeddingOption {
	return func(e *Embedding) { e.logger = l }
}

// Embedding implements sift.EmbeddingProvider against the embeddings
// endpoint.
type Embedding struct {
	apiKey   string
	model    string
	baseURL  string
	dims     int
	sendDims bool
	client   *http.Client
	logger   *slog.Logger
}

var _ sift.EmbeddingProvider = (*Embedding)(nil)

// NewEmbedding creates an embedding provider. model falls back to
// DefaultEmbeddingModel when empty. An empty apiKey fails with
// ErrMissingCredential.
func NewEmbedding(apiKey, model string, opts ...EmbeddingOption) (*Embedding, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embedding: %w", sift.ErrMissingCredential)
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	e := &Embedding{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		dims:    DefaultDimensions,
		client:  &http.Client{},
		logger:  nopLogger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name returns the provider name.
func (e *Embedding) Name() string { return providerName }

// Dimensions returns the embedding dimensionality.
func (e *Embedding) Dimensions() int { return e.dims }

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
	} `json:"usage"`
}

// Embed returns one embedding per input text, in input order. The API
// reports an index per vector, so results are placed by index rather than
// response position.
func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body := embeddingRequest{Model: e.model, Input: texts}
	if e.sendDims {
		body.Dimensions = e.dims
	}
	resp, err := postJSON(ctx, e.client, e.apiKey, e.baseURL+"/embeddings", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(resp)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("embedding count mismatch: got %d for %d inputs", len(parsed.Data), len(texts))}
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("embedding index %d out of range", d.Index)}
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("no embedding returned for input %d", i)}
		}
	}

	e.logger.Debug("embedding batch ok",
		"model", e.model,
		"inputs", len(texts),
		"input_tokens", parsed.Usage.PromptTokens)

	return vectors, nil
}
