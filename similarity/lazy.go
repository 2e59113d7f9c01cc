package similarity

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/fundlink/errors"
)

// Factory constructs the underlying provider.
type Factory func() (Embedder, error)

// Lazy is a Port whose provider is constructed on the first Embed call.
// A construction failure is remembered and returned by every later call.
type Lazy struct {
	factory Factory
	log     *zap.SugaredLogger

	once     sync.Once
	built    atomic.Bool
	embedder Embedder
	err      error
}

// NewLazy returns a Port that defers calling factory until it is needed.
func NewLazy(factory Factory, log *zap.SugaredLogger) *Lazy {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Lazy{factory: factory, log: log}
}

// Embed constructs the provider if necessary and embeds text.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	l.once.Do(func() {
		defer l.built.Store(true)
		l.embedder, l.err = l.factory()
		if l.err != nil {
			l.err = errors.Wrap(l.err, "construct similarity provider")
			return
		}
		l.log.Infow("Similarity provider ready", "provider", l.embedder.Name())
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.embedder.Embed(ctx, text)
}

// Cosine compares two embeddings without touching the provider.
func (l *Lazy) Cosine(a, b []float32) (float64, error) {
	return Cosine(a, b)
}

// Constructed reports whether construction of the provider was attempted.
func (l *Lazy) Constructed() bool {
	return l.built.Load()
}

// Limited throttles an Embedder to a fixed request rate.
type Limited struct {
	next    Embedder
	limiter *rate.Limiter
}

// NewLimited wraps next so that it is called at most perSecond times per
// second. perSecond <= 0 disables throttling.
func NewLimited(next Embedder, perSecond float64) Embedder {
	if perSecond <= 0 {
		return next
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Embed waits for a token then delegates.
func (l *Limited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "wait for embedding rate limit")
	}
	return l.next.Embed(ctx, text)
}

// Name returns the wrapped provider name.
func (l *Limited) Name() string {
	return l.next.Name()
}
