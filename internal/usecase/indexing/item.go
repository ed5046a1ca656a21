package indexing

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/domain/canon"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/record"
)

// Item is a validated record reduced to what indexing needs.
type Item struct {
	ID     string
	Text   string
	Fields map[string]string
}

// Prepare decodes one JSON record of kind k, validates it, and builds its canonical text.
func Prepare(b *canon.Builder, k kind.Kind, raw []byte) (Item, error) {
	switch k {
	case kind.Person:
		var p record.Person
		if err := decode(raw, &p); err != nil {
			return Item{}, err
		}
		if err := p.Validate(); err != nil {
			return Item{}, err
		}
		return Item{ID: p.ID, Text: b.Person(&p), Fields: p.Fields()}, nil
	case kind.Organization:
		var o record.Organization
		if err := decode(raw, &o); err != nil {
			return Item{}, err
		}
		if err := o.Validate(); err != nil {
			return Item{}, err
		}
		return Item{ID: o.ID, Text: b.Organization(&o), Fields: o.Fields()}, nil
	case kind.Location:
		var l record.Location
		if err := decode(raw, &l); err != nil {
			return Item{}, err
		}
		if err := l.Validate(); err != nil {
			return Item{}, err
		}
		return Item{ID: l.ID, Text: b.Location(&l), Fields: l.Fields()}, nil
	case kind.Production:
		var p record.Production
		if err := decode(raw, &p); err != nil {
			return Item{}, err
		}
		if err := p.Validate(); err != nil {
			return Item{}, err
		}
		return Item{ID: p.ID, Text: b.Production(&p), Fields: p.Fields()}, nil
	default:
		return Item{}, fmt.Errorf("unknown record kind %q: %w", k, domain.ErrInvalidRecord)
	}
}

func decode(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode record: %v: %w", err, domain.ErrInvalidRecord)
	}
	return nil
}
