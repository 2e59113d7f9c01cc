package similarity

import (
	"time"

	"go.uber.org/zap"

	"github.com/teranos/fundlink/errors"
)

// Provider names accepted in configuration.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Provider defaults.
const (
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "nomic-embed-text"
	DefaultOpenAIModel    = "text-embedding-3-small"
	DefaultTimeout        = 30 * time.Second
)

// Options selects and tunes a provider.
type Options struct {
	Provider          string
	BaseURL           string
	Model             string
	APIKey            string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// NewEmbedder builds the configured provider, rate limited when requested.
func NewEmbedder(opts Options) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch opts.Provider {
	case ProviderOllama, "":
		e, err = NewOllamaEmbedder(opts.BaseURL, opts.Model, opts.Timeout)
	case ProviderOpenAI:
		e, err = NewOpenAIEmbedder(opts.APIKey, opts.BaseURL, opts.Model, opts.Timeout)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupported, "similarity provider %q (use %q or %q)",
			opts.Provider, ProviderOllama, ProviderOpenAI)
	}
	if err != nil {
		return nil, err
	}
	return NewLimited(e, opts.RequestsPerSecond), nil
}

// NewLazyPort returns a Port that builds the configured provider on first use.
func NewLazyPort(opts Options, log *zap.SugaredLogger) *Lazy {
	return NewLazy(func() (Embedder, error) { return NewEmbedder(opts) }, log)
}
