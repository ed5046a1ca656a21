package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/slatesearch/internal/db"
	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	domrec "github.com/kailas-cloud/slatesearch/internal/domain/record"
)

// store is the consumer interface for record storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// IndexConfig holds the vector field parameters shared by every kind's index.
type IndexConfig struct {
	Dimensions  int
	Algorithm   db.VectorAlgorithm
	M           int
	EFConstruct int
}

// Repo writes records into per-kind hash key spaces and manages their indexes.
type Repo struct {
	store  store
	prefix string
	index  IndexConfig
}

// New creates a record repository over the key space rooted at prefix.
func New(s store, prefix string, cfg IndexConfig) *Repo {
	if cfg.Algorithm == "" {
		cfg.Algorithm = db.VectorHNSW
	}
	return &Repo{store: s, prefix: prefix, index: cfg}
}

// EnsureIndexes creates every missing kind index and returns the kinds it created.
func (r *Repo) EnsureIndexes(ctx context.Context) ([]kind.Kind, error) {
	var created []kind.Kind
	for _, k := range kind.All() {
		name := k.IndexName(r.prefix)
		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return created, fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			continue
		}
		if err := r.createIndex(ctx, k); err != nil {
			return created, err
		}
		created = append(created, k)
	}
	return created, nil
}

// RebuildIndex drops and recreates the index of one kind. Stored hashes are kept
// and re-indexed by the server.
func (r *Repo) RebuildIndex(ctx context.Context, k kind.Kind) error {
	name := k.IndexName(r.prefix)
	if err := r.store.DropIndex(ctx, name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return r.createIndex(ctx, k)
}

func (r *Repo) createIndex(ctx context.Context, k kind.Kind) error {
	def, err := buildIndex(k, r.prefix, r.index)
	if err != nil {
		return fmt.Errorf("build index %s: %w", k, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Save writes documents of one kind in a single pipelined round-trip.
func (r *Repo) Save(ctx context.Context, k kind.Kind, docs []domrec.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(docs))
	for _, d := range docs {
		if len(d.Vector) != r.index.Dimensions {
			return fmt.Errorf("%s %s: vector has %d dimensions, index expects %d",
				k, d.ID, len(d.Vector), r.index.Dimensions)
		}
		fields := make(map[string]string, len(d.Fields)+1)
		for name, v := range d.Fields {
			fields[name] = v
		}
		fields[db.DefaultVectorField] = string(db.EncodeVector(d.Vector))
		items = append(items, db.HashSetItem{Key: k.KeyPrefix(r.prefix) + d.ID, Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("save %d %s records: %w", len(docs), k, err)
	}
	return nil
}

// Fields returns the stored display fields of one record, without its vector.
func (r *Repo) Fields(ctx context.Context, k kind.Kind, id string) (map[string]string, error) {
	m, err := r.store.HGetAll(ctx, k.KeyPrefix(r.prefix)+id)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("get %s %s: %w", k, id, domain.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", k, id, err)
	}
	delete(m, db.DefaultVectorField)
	return m, nil
}

// Delete removes one record.
func (r *Repo) Delete(ctx context.Context, k kind.Kind, id string) error {
	if err := r.store.Del(ctx, k.KeyPrefix(r.prefix)+id); err != nil {
		return fmt.Errorf("delete %s %s: %w", k, id, err)
	}
	return nil
}

// buildIndex creates the FT index definition of one kind. Locations index
// is_public as a TAG so visibility stays queryable server-side.
func buildIndex(k kind.Kind, prefix string, cfg IndexConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(k.IndexName(prefix)).Prefix(k.KeyPrefix(prefix))
	if k == kind.Location {
		b = b.Tag(domrec.FieldIsPublic)
	}
	return b.Vector(db.DefaultVectorField, cfg.Dimensions, cfg.Algorithm, db.DistanceCosine, cfg.M, cfg.EFConstruct).
		Build()
}
