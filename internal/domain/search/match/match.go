// Package match holds per-candidate values produced while one search call runs.
package match

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/slatesearch/internal/domain/search/score"
)

// Raw is one nearest-neighbor candidate as returned by the store.
type Raw struct {
	ID        string
	Fields    map[string]string
	Relevance float64
}

// Scored is a Raw candidate with its normalized score.
type Scored struct {
	Raw
	Score      int
	MeetsFloor bool
}

// Rate scores a raw candidate under the given convention.
func Rate(r Raw, c score.Convention) Scored {
	s := c.Score(r.Relevance)
	return Scored{Raw: r, Score: s, MeetsFloor: score.Passes(s)}
}

// String returns a field value, empty when absent.
func (r *Raw) String(name string) string {
	return r.Fields[name]
}

// Optional returns a field value, nil when absent or empty.
func (r *Raw) Optional(name string) *string {
	v, ok := r.Fields[name]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// Bool parses a boolean field. Absent fields are false.
func (r *Raw) Bool(name string) (bool, error) {
	v, ok := r.Fields[name]
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", name, err)
	}
	return b, nil
}

// List decodes a JSON string array field. Absent fields are empty.
func (r *Raw) List(name string) ([]string, error) {
	v, ok := r.Fields[name]
	if !ok || v == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
