package slatesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	dombatch "github.com/kailas-cloud/slatesearch/internal/domain/batch"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	indexinguc "github.com/kailas-cloud/slatesearch/internal/usecase/indexing"
)

// searchUseCase is the internal interface for search operations.
type searchUseCase interface {
	Search(ctx context.Context, query string) (result.Result, error)
}

// indexUseCase is the internal interface for indexing operations.
type indexUseCase interface {
	Canonicalize(k kind.Kind, raw []byte) (indexinguc.Item, error)
	EnsureIndexes(ctx context.Context) ([]kind.Kind, error)
	Rebuild(ctx context.Context, k kind.Kind) error
	Index(ctx context.Context, k kind.Kind, items []indexinguc.Item) []dombatch.Result
	Ingest(ctx context.Context, k kind.Kind, r io.Reader, progress func([]dombatch.Result)) (dombatch.Summary, error)
	Stored(ctx context.Context, k kind.Kind, id string) (map[string]string, error)
	Remove(ctx context.Context, k kind.Kind, id string) error
}

// Search returns ranked matches of every kind. An empty query yields a
// StatusNoQuery result without embedding. A kind that could not be searched
// is listed in Result.Failed; ErrSearchUnavailable means none could.
func (c *Client) Search(ctx context.Context, query string) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	res, err = c.searchSvc.Search(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// EnsureIndexes creates the missing kind indexes and returns the created kinds.
func (c *Client) EnsureIndexes(ctx context.Context) (created []Kind, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_indexes", start, err) }()

	return c.indexSvc.EnsureIndexes(ctx)
}

// Rebuild drops and recreates one kind's index. Stored records are kept.
func (c *Client) Rebuild(ctx context.Context, k Kind) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild", start, err) }()

	if !k.IsValid() {
		return fmt.Errorf("rebuild: unknown record kind %q", k)
	}
	return c.indexSvc.Rebuild(ctx, k)
}

// Canonical returns the embeddable text of one JSON record.
func (c *Client) Canonical(k Kind, record json.RawMessage) (string, error) {
	item, err := c.indexSvc.Canonicalize(k, record)
	if err != nil {
		return "", err
	}
	return item.Text, nil
}

// Index embeds and stores JSON records of one kind. Every record gets one
// result in input order; a record that cannot be decoded is reported by its
// position. The error covers arguments only.
func (c *Client) Index(ctx context.Context, k Kind, records []json.RawMessage) (results []ItemResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	if !k.IsValid() {
		return nil, fmt.Errorf("index: unknown record kind %q", k)
	}

	results = make([]ItemResult, len(records))
	valid := make([]indexinguc.Item, 0, len(records))
	positions := make([]int, 0, len(records))
	for i, raw := range records {
		item, perr := c.indexSvc.Canonicalize(k, raw)
		if perr != nil {
			results[i] = dombatch.NewInvalid(fmt.Sprintf("record %d", i), perr)
			continue
		}
		valid = append(valid, item)
		positions = append(positions, i)
	}

	for j, r := range c.indexSvc.Index(ctx, k, valid) {
		results[positions[j]] = r
	}
	return results, nil
}

// Ingest reads JSON-lines records of one kind and indexes them in batches.
func (c *Client) Ingest(ctx context.Context, k Kind, r io.Reader) (summary Summary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	if !k.IsValid() {
		return Summary{}, fmt.Errorf("ingest: unknown record kind %q", k)
	}
	return c.indexSvc.Ingest(ctx, k, r, nil)
}

// Record returns the stored display fields of one record.
func (c *Client) Record(ctx context.Context, k Kind, id string) (fields map[string]string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("record", start, err) }()

	return c.indexSvc.Stored(ctx, k, id)
}

// Remove deletes one record so it no longer matches searches.
func (c *Client) Remove(ctx context.Context, k Kind, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("remove", start, err) }()

	return c.indexSvc.Remove(ctx, k, id)
}
