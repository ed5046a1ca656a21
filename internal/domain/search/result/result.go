// Package result defines the presentation records returned by a search.
package result

import "github.com/kailas-cloud/slatesearch/internal/domain/kind"

// Status distinguishes an empty query from a query that ran.
type Status string

const (
	// StatusNoQuery means the query text was empty or whitespace; nothing ran.
	StatusNoQuery Status = "no_query"
	// StatusResults means the query was embedded and the kinds were searched.
	StatusResults Status = "results"
)

// Person is a shaped person match.
type Person struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Username  string   `json:"username"`
	Headline  *string  `json:"headline,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Skills    []string `json:"skills"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
	Initials  string   `json:"initials"`
	Score     int      `json:"score"`
}

// Organization is a shaped organization match.
type Organization struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	Score       int     `json:"score"`
}

// Location is a shaped location match. Only public locations are returned.
type Location struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Description *string `json:"description,omitempty"`
	Score       int     `json:"score"`
}

// Production is a shaped production match.
type Production struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Score       int     `json:"score"`
}

// Result is the merged outcome of one search call.
type Result struct {
	Status        Status         `json:"status"`
	Query         string         `json:"query,omitempty"`
	Total         int            `json:"total"`
	People        []Person       `json:"people"`
	Organizations []Organization `json:"organizations"`
	Locations     []Location     `json:"locations"`
	Productions   []Production   `json:"productions"`
	// Failed lists kinds whose lookup failed; their lists are empty.
	Failed []kind.Kind `json:"failed,omitempty"`
}

// NoQuery returns the result for an empty query.
func NoQuery() Result {
	return Result{
		Status:        StatusNoQuery,
		People:        []Person{},
		Organizations: []Organization{},
		Locations:     []Location{},
		Productions:   []Production{},
	}
}

// HasResults reports whether any kind produced a match.
func (r *Result) HasResults() bool {
	return r.Status == StatusResults && r.Total > 0
}

// Partial reports whether at least one kind could not be searched.
func (r *Result) Partial() bool {
	return len(r.Failed) > 0
}

// Recount sets Total to the sum of the per-kind list lengths.
func (r *Result) Recount() {
	r.Total = len(r.People) + len(r.Organizations) + len(r.Locations) + len(r.Productions)
}
