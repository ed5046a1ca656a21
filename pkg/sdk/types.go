package slatesearch

import (
	dombatch "github.com/kailas-cloud/slatesearch/internal/domain/batch"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/score"
)

// Kind is a searchable record kind.
type Kind = kind.Kind

// Record kinds.
const (
	KindPerson       = kind.Person
	KindOrganization = kind.Organization
	KindLocation     = kind.Location
	KindProduction   = kind.Production
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) { return kind.Parse(s) }

// Result is the merged outcome of one search.
type Result = result.Result

// Shaped matches per kind.
type (
	PersonMatch       = result.Person
	OrganizationMatch = result.Organization
	LocationMatch     = result.Location
	ProductionMatch   = result.Production
)

// ResultStatus distinguishes an empty query from a query that ran.
type ResultStatus = result.Status

// Result statuses.
const (
	StatusNoQuery = result.StatusNoQuery
	StatusResults = result.StatusResults
)

// Relevance names how the store reports the raw KNN value.
type Relevance = score.Convention

// Relevance conventions.
const (
	RelevanceDistance   = score.Distance
	RelevanceSimilarity = score.Similarity
)

// ItemResult is the indexing outcome of one record.
type ItemResult = dombatch.Result

// ItemStatus is the outcome value of an ItemResult.
type ItemStatus = dombatch.ItemStatus

// Record outcomes.
const (
	ItemOK      = dombatch.StatusOK
	ItemInvalid = dombatch.StatusInvalid
	ItemError   = dombatch.StatusError
)

// Summary counts the outcomes of an ingestion run.
type Summary = dombatch.Summary
