package slatesearch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	dombatch "github.com/kailas-cloud/slatesearch/internal/domain/batch"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/slatesearch/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/slatesearch/internal/usecase/indexing"
)

// --- Search ---

func TestSearch_ReturnsResult(t *testing.T) {
	s := &mockSearchUC{res: result.Result{
		Status: result.StatusResults,
		Total:  1,
		People: []result.Person{{ID: "p1", Score: 82}},
	}}
	c := newTestClient(s, &mockIndexUC{}, &mockHealthUC{})

	res, err := c.Search(context.Background(), "stunt coordinator")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.query != "stunt coordinator" {
		t.Errorf("query = %q", s.query)
	}
	if res.Status != StatusResults || len(res.People) != 1 || res.People[0].Score != 82 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSearch_PreservesSentinel(t *testing.T) {
	s := &mockSearchUC{err: ErrSearchUnavailable}
	c := newTestClient(s, &mockIndexUC{}, &mockHealthUC{})

	_, err := c.Search(context.Background(), "x")
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Errorf("expected ErrSearchUnavailable, got %v", err)
	}
}

// --- Indexing ---

func TestIndex_KeepsInputOrder(t *testing.T) {
	ix := &mockIndexUC{}
	c := newTestClient(&mockSearchUC{}, ix, &mockHealthUC{})

	records := []json.RawMessage{
		json.RawMessage(`{a}`),
		json.RawMessage(`broken`),
		json.RawMessage(`{b}`),
	}
	results, err := c.Index(context.Background(), KindPerson, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Status() != ItemOK || results[0].ID() != "a" {
		t.Errorf("results[0] = %s %s", results[0].ID(), results[0].Status())
	}
	if results[1].Status() != ItemInvalid || results[1].ID() != "record 1" {
		t.Errorf("results[1] = %s %s", results[1].ID(), results[1].Status())
	}
	if results[2].Status() != ItemOK || results[2].ID() != "b" {
		t.Errorf("results[2] = %s %s", results[2].ID(), results[2].Status())
	}
	if len(ix.indexed) != 2 {
		t.Errorf("expected 2 items indexed, got %d", len(ix.indexed))
	}
}

func TestIndex_ReportsFailedChunk(t *testing.T) {
	boom := errors.New("embed failed")
	ix := &mockIndexUC{indexFn: func(items []indexinguc.Item) []dombatch.Result {
		out := make([]dombatch.Result, len(items))
		for i, it := range items {
			out[i] = dombatch.NewError(it.ID, boom)
		}
		return out
	}}
	c := newTestClient(&mockSearchUC{}, ix, &mockHealthUC{})

	results, err := c.Index(context.Background(), KindOrganization, []json.RawMessage{json.RawMessage(`{o1}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status() != ItemError || !errors.Is(results[0].Err(), boom) {
		t.Errorf("unexpected result %s %v", results[0].Status(), results[0].Err())
	}
}

func TestIndex_UnknownKind(t *testing.T) {
	c := newTestClient(&mockSearchUC{}, &mockIndexUC{}, &mockHealthUC{})

	if _, err := c.Index(context.Background(), Kind("venue"), nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestIngest(t *testing.T) {
	ix := &mockIndexUC{summary: dombatch.Summary{OK: 2, Invalid: 1}}
	c := newTestClient(&mockSearchUC{}, ix, &mockHealthUC{})

	summary, err := c.Ingest(context.Background(), KindLocation, strings.NewReader("{l1}\n{l2}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total() != 3 {
		t.Errorf("total = %d", summary.Total())
	}
	if ix.ingested != "{l1}\n{l2}\n" {
		t.Errorf("ingested = %q", ix.ingested)
	}
}

func TestCanonical(t *testing.T) {
	c := newTestClient(&mockSearchUC{}, &mockIndexUC{}, &mockHealthUC{})

	text, err := c.Canonical(KindProduction, json.RawMessage(`{pr1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "production {pr1}" {
		t.Errorf("text = %q", text)
	}

	if _, err := c.Canonical(KindProduction, json.RawMessage(`nope`)); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestRebuildAndEnsure(t *testing.T) {
	ix := &mockIndexUC{ensured: []Kind{KindPerson, KindLocation}}
	c := newTestClient(&mockSearchUC{}, ix, &mockHealthUC{})

	created, err := c.EnsureIndexes(context.Background())
	if err != nil || len(created) != 2 {
		t.Fatalf("EnsureIndexes = %v, %v", created, err)
	}
	if err := c.Rebuild(context.Background(), KindPerson); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if len(ix.rebuilt) != 1 || ix.rebuilt[0] != KindPerson {
		t.Errorf("rebuilt = %v", ix.rebuilt)
	}
	if err := c.Rebuild(context.Background(), Kind("x")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRecordAndRemove(t *testing.T) {
	ix := &mockIndexUC{stored: map[string]string{"name": "Ada"}}
	c := newTestClient(&mockSearchUC{}, ix, &mockHealthUC{})

	fields, err := c.Record(context.Background(), KindPerson, "p1")
	if err != nil || fields["name"] != "Ada" {
		t.Fatalf("Record = %v, %v", fields, err)
	}
	if err := c.Remove(context.Background(), KindPerson, "p1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ix.removed != "person:p1" {
		t.Errorf("removed = %q", ix.removed)
	}
}

// --- Health ---

func TestHealth(t *testing.T) {
	h := &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			healthuc.CheckStore:     healthuc.CheckOK,
			healthuc.CheckModel:     healthuc.CheckOK,
			healthuc.CheckEmbedding: healthuc.CheckError,
		},
	}}
	c := newTestClient(&mockSearchUC{}, &mockIndexUC{}, h)

	status := c.Health(context.Background())
	if status.Status != "degraded" {
		t.Errorf("status = %q", status.Status)
	}
	if status.Checks["embedding"] != "error" || status.Checks["store"] != "ok" {
		t.Errorf("checks = %v", status.Checks)
	}
}
