package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/record"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/match"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/score"
)

// --- Mocks ---

type mockRepo struct {
	mu      sync.Mutex
	matches map[kind.Kind][]match.Raw
	errs    map[kind.Kind]error
	block   map[kind.Kind]bool // wait for ctx instead of answering
	calls   map[kind.Kind]int
	topK    int
	fields  map[kind.Kind][]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		matches: map[kind.Kind][]match.Raw{},
		errs:    map[kind.Kind]error{},
		block:   map[kind.Kind]bool{},
		calls:   map[kind.Kind]int{},
		fields:  map[kind.Kind][]string{},
	}
}

func (m *mockRepo) Nearest(
	ctx context.Context, k kind.Kind, _ []float32, topK int, fields []string,
) ([]match.Raw, error) {
	m.mu.Lock()
	m.calls[k]++
	m.topK = topK
	m.fields[k] = fields
	matches, err, block := m.matches[k], m.errs[k], m.block[k]
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return matches, err
}

func (m *mockRepo) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

type mockEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vector}, nil
}

func newTestService(repo *mockRepo, emb *mockEmbedder) *Service {
	return New(repo, emb, Config{LookupTimeout: time.Second}, zap.NewNop())
}

func person(id string, distance float64) match.Raw {
	return match.Raw{
		ID: id,
		Fields: map[string]string{
			record.FieldName:     "John Doe",
			record.FieldUsername: "jdoe",
			record.FieldHeadline: "Actor",
			record.FieldSkills:   `["acting","singing"]`,
		},
		Relevance: distance,
	}
}

func location(id string, distance float64, public string) match.Raw {
	return match.Raw{
		ID: id,
		Fields: map[string]string{
			record.FieldName:     "Stage " + id,
			record.FieldCity:     "Atlanta",
			record.FieldIsPublic: public,
		},
		Relevance: distance,
	}
}

// --- Tests ---

func TestSearch_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		repo := newMockRepo()
		emb := &mockEmbedder{vector: []float32{1, 0}}
		svc := newTestService(repo, emb)

		res, err := svc.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("query %q: unexpected error: %v", q, err)
		}
		if res.Status != result.StatusNoQuery {
			t.Errorf("query %q: expected no_query status, got %s", q, res.Status)
		}
		if res.HasResults() || res.Total != 0 {
			t.Errorf("query %q: expected no results", q)
		}
		if len(res.People)+len(res.Organizations)+len(res.Locations)+len(res.Productions) != 0 {
			t.Errorf("query %q: expected empty lists", q)
		}
		if emb.calls != 0 {
			t.Errorf("query %q: embedder must not be called", q)
		}
		if repo.totalCalls() != 0 {
			t.Errorf("query %q: store must not be queried", q)
		}
	}
}

func TestSearch_ScoresAndFloor(t *testing.T) {
	repo := newMockRepo()
	repo.matches[kind.Person] = []match.Raw{person("p1", 0.3), person("p2", 1.6)}
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	res, err := svc.Search(context.Background(), "  actor  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Query != "actor" {
		t.Errorf("expected trimmed query, got %q", res.Query)
	}
	if len(res.People) != 1 {
		t.Fatalf("expected 1 person, got %d", len(res.People))
	}
	p := res.People[0]
	if p.ID != "p1" || p.Score != 70 {
		t.Errorf("expected p1 with score 70, got %s/%d", p.ID, p.Score)
	}
	if p.Initials != "JD" {
		t.Errorf("expected initials JD, got %q", p.Initials)
	}
	if len(p.Skills) != 2 || p.Skills[0] != "acting" {
		t.Errorf("unexpected skills: %v", p.Skills)
	}
	if p.Location != nil {
		t.Error("absent location should be nil")
	}
	if res.Total != 1 || !res.HasResults() {
		t.Errorf("expected total 1, got %d", res.Total)
	}
	if res.Partial() {
		t.Error("no kind failed")
	}
}

func TestSearch_FloorBoundary(t *testing.T) {
	repo := newMockRepo()
	repo.matches[kind.Person] = []match.Raw{person("exact", 0.5), person("below", 0.51)}
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	res, err := svc.Search(context.Background(), "actor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.People) != 1 || res.People[0].ID != "exact" || res.People[0].Score != 50 {
		t.Fatalf("expected only the score-50 match, got %+v", res.People)
	}
}

func TestSearch_OrdersByScore(t *testing.T) {
	repo := newMockRepo()
	repo.matches[kind.Person] = []match.Raw{person("mid", 0.2), person("best", 0.05), person("low", 0.4)}
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	res, err := svc.Search(context.Background(), "actor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"best", "mid", "low"}
	for i, id := range want {
		if res.People[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, res.People[i].ID)
		}
	}
}

func TestSearch_LocationVisibility(t *testing.T) {
	repo := newMockRepo()
	repo.matches[kind.Location] = []match.Raw{
		location("pub", 0.1, "true"),
		location("priv", 0.1, "false"),
		location("unset", 0.1, ""),
	}
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	res, err := svc.Search(context.Background(), "warehouse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Locations) != 1 || res.Locations[0].ID != "pub" {
		t.Fatalf("expected only the public location, got %+v", res.Locations)
	}
	if res.Locations[0].City != "Atlanta" {
		t.Errorf("expected city Atlanta, got %q", res.Locations[0].City)
	}
}

func TestSearch_OneKindFails(t *testing.T) {
	repo := newMockRepo()
	repo.matches[kind.Person] = []match.Raw{person("p1", 0.1)}
	repo.matches[kind.Organization] = []match.Raw{{ID: "o1", Fields: map[string]string{record.FieldName: "Acme"}, Relevance: 0.2}}
	repo.matches[kind.Location] = []match.Raw{location("l1", 0.3, "true")}
	repo.errs[kind.Production] = errors.New("connection reset")
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	res, err := svc.Search(context.Background(), "drama")
	if err != nil {
		t.Fatalf("one failed kind must not fail the request: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0] != kind.Production {
		t.Fatalf("expected production marked failed, got %v", res.Failed)
	}
	if !res.Partial() {
		t.Error("expected partial result")
	}
	if len(res.People) != 1 || len(res.Organizations) != 1 || len(res.Locations) != 1 {
		t.Errorf("expected the other three kinds populated, got %d/%d/%d",
			len(res.People), len(res.Organizations), len(res.Locations))
	}
	if res.Productions == nil || len(res.Productions) != 0 {
		t.Error("failed kind should have an empty list")
	}
	if res.Total != 3 {
		t.Errorf("expected total 3, got %d", res.Total)
	}
}

func TestSearch_DeserializationFailsKind(t *testing.T) {
	repo := newMockRepo()
	bad := person("p1", 0.1)
	bad.Fields[record.FieldSkills] = "not json"
	repo.matches[kind.Person] = []match.Raw{bad}
	repo.matches[kind.Production] = []match.Raw{{ID: "m1", Fields: map[string]string{record.FieldTitle: "Pilot"}, Relevance: 0.1}}
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	res, err := svc.Search(context.Background(), "drama")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0] != kind.Person {
		t.Fatalf("expected person marked failed, got %v", res.Failed)
	}
	if len(res.Productions) != 1 {
		t.Errorf("expected production to survive, got %d", len(res.Productions))
	}
}

func TestSearch_AllKindsFail(t *testing.T) {
	repo := newMockRepo()
	for _, k := range kind.All() {
		repo.errs[k] = errors.New("index missing")
	}
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	_, err := svc.Search(context.Background(), "drama")
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
	if !errors.Is(err, domain.ErrBackend) {
		t.Errorf("expected wrapped backend errors, got %v", err)
	}
}

func TestSearch_InferenceFailureIsFatal(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockEmbedder{err: domain.ErrInference})

	_, err := svc.Search(context.Background(), "drama")
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
	if repo.totalCalls() != 0 {
		t.Error("store must not be queried after an inference failure")
	}
}

func TestSearch_NotInitialized(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockEmbedder{err: domain.ErrNotInitialized})

	_, err := svc.Search(context.Background(), "drama")
	if !errors.Is(err, domain.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSearch_LookupTimeout(t *testing.T) {
	repo := newMockRepo()
	repo.block[kind.Organization] = true
	repo.matches[kind.Person] = []match.Raw{person("p1", 0.1)}
	svc := New(repo, &mockEmbedder{vector: []float32{1, 0}}, Config{LookupTimeout: 20 * time.Millisecond}, zap.NewNop())

	res, err := svc.Search(context.Background(), "drama")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0] != kind.Organization {
		t.Fatalf("expected organization timed out, got %v", res.Failed)
	}
	if len(res.People) != 1 {
		t.Errorf("expected person result, got %d", len(res.People))
	}
}

func TestSearch_CallerCancellation(t *testing.T) {
	repo := newMockRepo()
	for _, k := range kind.All() {
		repo.block[k] = true
	}
	svc := New(repo, &mockEmbedder{vector: []float32{1, 0}}, Config{LookupTimeout: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Search(ctx, "drama")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected caller deadline, got %v", err)
	}
	if errors.Is(err, domain.ErrSearchUnavailable) {
		t.Errorf("cancellation must not be reported as unavailable: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("lookups outlived the caller: %v", elapsed)
	}
	if got := repo.totalCalls(); got != len(kind.All()) {
		t.Errorf("expected every kind queried concurrently, got %d calls", got)
	}
}

func TestSearch_QueriesEveryKindWithProjection(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockEmbedder{vector: []float32{1, 0}})

	res, err := svc.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HasResults() {
		t.Error("expected no results")
	}
	for _, k := range kind.All() {
		if repo.calls[k] != 1 {
			t.Errorf("kind %s: expected 1 lookup, got %d", k, repo.calls[k])
		}
	}
	if repo.topK != DefaultTopK {
		t.Errorf("expected topK %d, got %d", DefaultTopK, repo.topK)
	}
	if len(repo.fields[kind.Location]) != len(record.LocationFields) {
		t.Errorf("unexpected location projection: %v", repo.fields[kind.Location])
	}
}

func TestSearch_SimilarityConvention(t *testing.T) {
	repo := newMockRepo()
	repo.matches[kind.Person] = []match.Raw{person("p1", 0.7)}
	svc := New(repo, &mockEmbedder{vector: []float32{1, 0}}, Config{Convention: score.Similarity}, zap.NewNop())

	res, err := svc.Search(context.Background(), "actor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.People) != 1 || res.People[0].Score != 70 {
		t.Fatalf("expected score 70, got %+v", res.People)
	}
}
