package similarity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/fundlink/errors"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", []float32{}, []float32{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 != 1")
}

func TestOllamaEmbedder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "heart disease", req.Prompt)

		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2}})
	}))
	defer server.Close()

	e, err := NewOllamaEmbedder(server.URL, "test-model", time.Second)
	require.NoError(t, err)
	vec, err := e.Embed(context.Background(), "heart disease")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, "ollama:test-model", e.Name())
}

func TestOllamaEmbedder_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	e, err := NewOllamaEmbedder(server.URL, "", time.Second)
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaEmbedder_Defaults(t *testing.T) {
	e, err := NewOllamaEmbedder("", "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaEndpoint, e.client.BaseURL())
	assert.Equal(t, DefaultOllamaModel, e.model)
	assert.Equal(t, DefaultTimeout, e.client.Timeout)

	_, err = NewOllamaEmbedder("ftp://models.local", "", 0)
	require.Error(t, err)
}

func TestOpenAIEmbedder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",` +
			`"data":[{"object":"embedding","index":0,"embedding":[0.5,-0.5]}]}`))
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedder("sk-test", server.URL+"/v1", "", time.Second)
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "abstract")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.5}, vec)
	assert.Equal(t, "openai:"+DefaultOpenAIModel, e.Name())
}

func TestOpenAIEmbedder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder("", "", "", 0)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder(Options{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.IsType(t, &OllamaEmbedder{}, e)

	e, err = NewEmbedder(Options{Provider: ProviderOllama, RequestsPerSecond: 5})
	require.NoError(t, err)
	assert.IsType(t, &Limited{}, e)

	_, err = NewEmbedder(Options{Provider: "word2vec"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}

type fakeEmbedder struct {
	calls atomic.Int32
	vec   []float32
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	return f.vec, f.err
}

func (f *fakeEmbedder) Name() string { return "fake" }

func TestLazy_DefersConstruction(t *testing.T) {
	var built atomic.Int32
	fake := &fakeEmbedder{vec: []float32{1, 0}}
	lazy := NewLazy(func() (Embedder, error) {
		built.Add(1)
		return fake, nil
	}, zaptest.NewLogger(t).Sugar())

	assert.False(t, lazy.Constructed())
	sim, err := lazy.Cosine([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
	assert.False(t, lazy.Constructed(), "Cosine must not construct the provider")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lazy.Embed(context.Background(), "text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, lazy.Constructed())
	assert.Equal(t, int32(1), built.Load())
	assert.Equal(t, int32(8), fake.calls.Load())
}

func TestLazy_RemembersFactoryError(t *testing.T) {
	var built atomic.Int32
	lazy := NewLazy(func() (Embedder, error) {
		built.Add(1)
		return nil, errors.New("no api key")
	}, nil)

	_, err := lazy.Embed(context.Background(), "a")
	require.Error(t, err)
	_, err = lazy.Embed(context.Background(), "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no api key")
	assert.Equal(t, int32(1), built.Load())
}

func TestLimited(t *testing.T) {
	fake := &fakeEmbedder{vec: []float32{1}}
	assert.Same(t, Embedder(fake), NewLimited(fake, 0))

	limited := NewLimited(fake, 1000)
	_, err := limited.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "fake", limited.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLimited(fake, 0.001).Embed(ctx, "x")
	require.Error(t, err)
}

func TestAsPort(t *testing.T) {
	port := AsPort(&fakeEmbedder{vec: []float32{3, 4}})
	vec, err := port.Embed(context.Background(), "x")
	require.NoError(t, err)
	sim, err := port.Cosine(vec, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}
