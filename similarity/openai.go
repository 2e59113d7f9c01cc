package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/internal/httpclient"
)

// OpenAIEmbedder generates embeddings through an OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for the given API key and model.
// baseURL may point at any OpenAI-compatible server; empty uses OpenAI.
func NewOpenAIEmbedder(apiKey, baseURL, model string, timeout time.Duration) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.WithHint(
			errors.New("openai api key is required"),
			"set semantic.api_key or FUNDLINK_SEMANTIC_API_KEY")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	// the public endpoint must never resolve to a private address
	opts := httpclient.Options{Timeout: timeout, BlockPrivateIP: baseURL == ""}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	client, err := httpclient.New(cfg.BaseURL, opts)
	if err != nil {
		return nil, errors.Wrap(err, "openai endpoint")
	}
	cfg.HTTPClient = client.Client

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Embed generates an embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai embeddings request failed")
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("openai returned no embedding")
	}
	return resp.Data[0].Embedding, nil
}

// Name returns the provider name.
func (e *OpenAIEmbedder) Name() string {
	return fmt.Sprintf("openai:%s", e.model)
}
