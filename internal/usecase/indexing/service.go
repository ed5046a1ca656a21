package indexing

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	dombatch "github.com/kailas-cloud/slatesearch/internal/domain/batch"
	"github.com/kailas-cloud/slatesearch/internal/domain/canon"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/record"
)

// MaxBatchSize is the default number of records embedded and stored together.
const MaxBatchSize = 64

// maxLineSize bounds one JSON record in an ingestion stream.
const maxLineSize = 1 << 20

// Service canonicalizes, embeds, and stores records with per-record error reporting.
type Service struct {
	records      RecordWriter
	embed        BatchEmbedder
	canon        *canon.Builder
	maxBatchSize int
	logger       *zap.Logger
}

// New creates an indexing service.
func New(records RecordWriter, embed BatchEmbedder, logger *zap.Logger) *Service {
	return &Service{
		records:      records,
		embed:        embed,
		canon:        canon.New(),
		maxBatchSize: MaxBatchSize,
		logger:       logger,
	}
}

// WithMaxBatchSize configures how many records share one embedding call.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithCanonicalizer replaces the text builder, e.g. to pin its clock.
func (s *Service) WithCanonicalizer(b *canon.Builder) *Service {
	if b != nil {
		s.canon = b
	}
	return s
}

// Canonicalize prepares one JSON record without embedding it.
func (s *Service) Canonicalize(k kind.Kind, raw []byte) (Item, error) {
	return Prepare(s.canon, k, raw)
}

// EnsureIndexes creates the missing kind indexes.
func (s *Service) EnsureIndexes(ctx context.Context) ([]kind.Kind, error) {
	created, err := s.records.EnsureIndexes(ctx)
	if err != nil {
		return created, fmt.Errorf("ensure indexes: %w", err)
	}
	for _, k := range created {
		s.logger.Info("Index created", zap.String("kind", k.String()))
	}
	return created, nil
}

// Rebuild drops and recreates the index of one kind. Stored hashes are kept
// and re-indexed by the store.
func (s *Service) Rebuild(ctx context.Context, k kind.Kind) error {
	if err := s.records.RebuildIndex(ctx, k); err != nil {
		return fmt.Errorf("rebuild %s index: %w", k, err)
	}
	s.logger.Info("Index rebuilt", zap.String("kind", k.String()))
	return nil
}

// Stored returns the display fields kept for one record.
func (s *Service) Stored(ctx context.Context, k kind.Kind, id string) (map[string]string, error) {
	fields, err := s.records.Fields(ctx, k, id)
	if err != nil {
		return nil, fmt.Errorf("stored record: %w", err)
	}
	return fields, nil
}

// Remove deletes one record so it no longer matches searches.
func (s *Service) Remove(ctx context.Context, k kind.Kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidRecord)
	}
	if err := s.records.Delete(ctx, k, id); err != nil {
		return fmt.Errorf("remove record: %w", err)
	}
	s.logger.Debug("Record removed", zap.String("kind", k.String()), zap.String("id", id))
	return nil
}

// Index embeds and stores items of one kind in chunks of the configured size.
// A chunk succeeds or fails as a whole; later chunks still run.
func (s *Service) Index(ctx context.Context, k kind.Kind, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, 0, len(items))
	for offset := 0; offset < len(items); offset += s.maxBatchSize {
		end := min(offset+s.maxBatchSize, len(items))
		results = append(results, s.indexChunk(ctx, k, items[offset:end])...)
	}
	return results
}

func (s *Service) indexChunk(ctx context.Context, k kind.Kind, items []Item) []dombatch.Result {
	fail := func(err error) []dombatch.Result {
		s.logger.Warn("Indexing chunk failed",
			zap.String("kind", k.String()),
			zap.Int("records", len(items)),
			zap.Error(err),
		)
		out := make([]dombatch.Result, len(items))
		for i := range items {
			out[i] = dombatch.NewError(items[i].ID, err)
		}
		return out
	}

	texts := make([]string, len(items))
	for i := range items {
		texts[i] = items[i].Text
	}

	emb, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return fail(fmt.Errorf("vectorize: %w", err))
	}
	if len(emb.Embeddings) != len(items) {
		return fail(fmt.Errorf("vectorize: got %d vectors for %d records: %w",
			len(emb.Embeddings), len(items), domain.ErrInference))
	}

	docs := make([]record.Document, len(items))
	for i := range items {
		docs[i] = record.Document{ID: items[i].ID, Fields: items[i].Fields, Vector: emb.Embeddings[i]}
	}
	if err := s.records.Save(ctx, k, docs); err != nil {
		return fail(fmt.Errorf("save: %w", err))
	}

	out := make([]dombatch.Result, len(items))
	for i := range items {
		out[i] = dombatch.NewOK(items[i].ID)
	}
	return out
}

// Ingest reads JSON-lines records of one kind from r and indexes them.
// Blank lines are skipped; invalid lines are reported by line number and do
// not stop the run. progress, when set, receives the results of each flush.
// The returned error covers reading and cancellation only.
func (s *Service) Ingest(
	ctx context.Context, k kind.Kind, r io.Reader, progress func([]dombatch.Result),
) (dombatch.Summary, error) {
	var summary dombatch.Summary
	report := func(results []dombatch.Result) {
		summary.Add(results...)
		if progress != nil && len(results) > 0 {
			progress(results)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	pending := make([]Item, 0, s.maxBatchSize)
	var rejected []dombatch.Result
	flush := func() {
		results := append(rejected, s.Index(ctx, k, pending)...)
		report(results)
		pending = pending[:0]
		rejected = nil
	}

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		item, err := s.Canonicalize(k, raw)
		if err != nil {
			rejected = append(rejected, dombatch.NewInvalid(fmt.Sprintf("line %d", line), err))
			continue
		}
		pending = append(pending, item)
		if len(pending) == s.maxBatchSize {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read %s records: %w", k, err)
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	flush()

	s.logger.Info("Ingestion finished",
		zap.String("kind", k.String()),
		zap.Int("ok", summary.OK),
		zap.Int("invalid", summary.Invalid),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
