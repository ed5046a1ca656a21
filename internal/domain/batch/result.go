// Package batch reports per-record outcomes of an indexing run.
package batch

import "errors"

// ItemStatus is the indexing outcome of a single record.
type ItemStatus string

// Record outcome values.
const (
	StatusOK ItemStatus = "ok"
	// StatusInvalid marks a record rejected before embedding: undecodable or missing required attributes.
	StatusInvalid ItemStatus = "invalid"
	// StatusError marks a valid record whose embedding or storage failed.
	StatusError ItemStatus = "error"
)

// Result is the outcome of indexing one record.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewInvalid creates a result for a rejected record.
func NewInvalid(id string, err error) Result { return Result{id: id, status: StatusInvalid, err: err} }

// NewError creates a result for a record that failed after validation.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the record id, or a source position when the id is unknown.
func (r Result) ID() string { return r.id }

// Status returns the outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts outcomes of a run.
type Summary struct {
	OK      int
	Invalid int
	Failed  int
}

// Total returns the number of records seen.
func (s Summary) Total() int { return s.OK + s.Invalid + s.Failed }

// Add folds results into the summary.
func (s *Summary) Add(results ...Result) {
	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.OK++
		case StatusInvalid:
			s.Invalid++
		default:
			s.Failed++
		}
	}
}

// Errors joins the errors of every unsuccessful result.
func Errors(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	return errors.Join(errs...)
}
