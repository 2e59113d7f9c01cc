package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/internal/httpclient"
)

// OllamaEmbedder generates embeddings using a local Ollama server.
type OllamaEmbedder struct {
	model  string
	client *httpclient.Client
}

// NewOllamaEmbedder creates an Ollama embedder. Empty arguments fall back to
// the local default endpoint and model.
func NewOllamaEmbedder(endpoint, model string, timeout time.Duration) (*OllamaEmbedder, error) {
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client, err := httpclient.New(endpoint, httpclient.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrap(err, "ollama endpoint")
	}
	return &OllamaEmbedder{model: model, client: client}, nil
}

// Embed generates an embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, errors.Wrap(err, "marshal ollama request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.client.Endpoint("/api/embeddings"), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create ollama request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "ollama request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Newf("ollama returned status %d: %s", resp.StatusCode, string(msg))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode ollama response")
	}
	if len(result.Embedding) == 0 {
		return nil, errors.New("ollama returned an empty embedding")
	}
	return result.Embedding, nil
}

// Name returns the provider name.
func (e *OllamaEmbedder) Name() string {
	return fmt.Sprintf("ollama:%s", e.model)
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}
