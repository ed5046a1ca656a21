package embedding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
)

// DefaultPoolSize bounds the number of inference jobs accepted concurrently.
const DefaultPoolSize = 4

const warmUpText = "warm up"

// Loader constructs the model runtime. It is called by Init only.
type Loader func(ctx context.Context) (domain.TextEmbedder, error)

// Producer owns the embedding model for the life of the process.
// Inference is serialized on the model and runs on a dedicated worker pool,
// never on the caller's goroutine.
type Producer struct {
	load       Loader
	dimensions int
	pool       *ants.Pool
	slots      chan struct{} // admission; one slot per pool worker
	logger     *zap.Logger

	mu    sync.Mutex // guards model; held for the duration of each inference
	model domain.TextEmbedder

	ready   atomic.Bool
	checker domain.HealthChecker
}

type outcome struct {
	res domain.BatchEmbeddingResult
	err error
}

// NewProducer creates an uninitialized producer.
// dimensions <= 0 accepts whatever size the model reports at warm-up.
// poolSize <= 0 selects DefaultPoolSize.
func NewProducer(load Loader, dimensions, poolSize int, logger *zap.Logger) (*Producer, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create inference pool: %w", err)
	}
	return &Producer{
		load:       load,
		dimensions: dimensions,
		pool:       pool,
		slots:      make(chan struct{}, poolSize),
		logger:     logger,
	}, nil
}

// Init loads the model and runs one warm-up inference to fix the vector size.
// A failed Init may be retried; a second successful one is rejected.
func (p *Producer) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.model != nil {
		return domain.ErrAlreadyInitialized
	}

	start := time.Now()
	model, err := p.load(ctx)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	res, err := model.BatchEmbed(ctx, []string{warmUpText})
	if err != nil {
		return fmt.Errorf("warm up model: %w: %w", domain.ErrInference, err)
	}
	if len(res.Embeddings) != 1 || len(res.Embeddings[0]) == 0 {
		return fmt.Errorf("warm up model: empty embedding: %w", domain.ErrInference)
	}
	got := len(res.Embeddings[0])
	if p.dimensions > 0 && got != p.dimensions {
		return fmt.Errorf("warm up model: dimension %d, expected %d: %w", got, p.dimensions, domain.ErrInference)
	}
	p.dimensions = got

	p.model = model
	if hc, ok := model.(domain.HealthChecker); ok {
		p.checker = hc
	}
	p.ready.Store(true)

	p.logger.Info("Embedding model ready",
		zap.Int("dimensions", got),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Ready reports whether Init has completed.
func (p *Producer) Ready() bool { return p.ready.Load() }

// Dimensions returns the vector size. It is only meaningful after Init.
func (p *Producer) Dimensions() int {
	if !p.Ready() {
		return 0
	}
	return p.dimensions
}

// Embed generates the vector for one text.
func (p *Producer) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := p.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0], TotalTokens: res.TotalTokens}, nil
}

// BatchEmbed returns one vector per text in input order, or fails as a whole.
// The caller waits for the job or for ctx; a cancelled wait abandons the job.
func (p *Producer) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if !p.Ready() {
		return domain.BatchEmbeddingResult{}, domain.ErrNotInitialized
	}
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: [][]float32{}}, nil
	}

	queued := time.Now()
	// A free slot guarantees Submit finds an idle worker and never blocks.
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return domain.BatchEmbeddingResult{}, fmt.Errorf("wait for inference: %w", ctx.Err())
	}

	done := make(chan outcome, 1)
	err := p.pool.Submit(func() {
		defer func() { <-p.slots }()
		done <- p.infer(ctx, texts, queued)
	})
	if err != nil {
		<-p.slots
		return domain.BatchEmbeddingResult{}, fmt.Errorf("submit inference: %w: %w", domain.ErrInference, err)
	}

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return domain.BatchEmbeddingResult{}, fmt.Errorf("wait for inference: %w", ctx.Err())
	}
}

func (p *Producer) infer(ctx context.Context, texts []string, queued time.Time) outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	metrics.InferenceQueueWait.Observe(time.Since(queued).Seconds())

	// The caller may have given up while the job was queued.
	if err := ctx.Err(); err != nil {
		return outcome{err: err}
	}

	res, err := p.model.BatchEmbed(ctx, texts)
	if err != nil {
		return outcome{err: fmt.Errorf("%w: %w", domain.ErrInference, err)}
	}
	if len(res.Embeddings) != len(texts) {
		return outcome{err: fmt.Errorf("model returned %d vectors for %d texts: %w",
			len(res.Embeddings), len(texts), domain.ErrInference)}
	}
	for i, vec := range res.Embeddings {
		if len(vec) != p.dimensions {
			return outcome{err: fmt.Errorf("vector %d has dimension %d, expected %d: %w",
				i, len(vec), p.dimensions, domain.ErrInference)}
		}
	}
	return outcome{res: res}
}

// HealthCheck fails before Init and otherwise asks the runtime, when it can answer.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if !p.Ready() {
		return domain.ErrNotInitialized
	}
	if p.checker != nil {
		if err := p.checker.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding runtime: %w", err)
		}
	}
	return nil
}

// Release stops the worker pool. The producer must not be used afterwards.
func (p *Producer) Release() {
	p.pool.Release()
}
