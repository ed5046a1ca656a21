package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/slatesearch/internal/domain/canon"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/record"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/match"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/score"
)

// lookup is one kind's leg of the fan-out. It returns a setter that writes the
// kind's shaped list into the merged result.
type lookup interface {
	recordKind() kind.Kind
	run(ctx context.Context, repo Repository, vector []float32, topK int, conv score.Convention) (func(*result.Result), error)
}

// descriptor parameterizes the shared lookup pipeline for one kind.
type descriptor[T any] struct {
	k      kind.Kind
	fields []string
	keep   func(*match.Raw) (bool, error) // nil keeps every candidate
	shape  func(*match.Scored) (T, error)
	assign func(*result.Result, []T)
}

func (d descriptor[T]) recordKind() kind.Kind { return d.k }

func (d descriptor[T]) run(
	ctx context.Context, repo Repository, vector []float32, topK int, conv score.Convention,
) (func(*result.Result), error) {
	raws, err := repo.Nearest(ctx, d.k, vector, topK, d.fields)
	if err != nil {
		return nil, err
	}

	scored := make([]match.Scored, 0, len(raws))
	for _, raw := range raws {
		m := match.Rate(raw, conv)
		if !m.MeetsFloor {
			continue
		}
		if d.keep != nil {
			ok, err := d.keep(&m.Raw)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", m.ID, err)
			}
			if !ok {
				continue
			}
		}
		scored = append(scored, m)
	}
	slices.SortStableFunc(scored, func(a, b match.Scored) int { return cmp.Compare(b.Score, a.Score) })

	out := make([]T, 0, len(scored))
	for i := range scored {
		v, err := d.shape(&scored[i])
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", scored[i].ID, err)
		}
		out = append(out, v)
	}

	countMatches(d.k, len(raws), len(out))
	return func(r *result.Result) { d.assign(r, out) }, nil
}

// lookups returns the four kind pipelines in display order.
func lookups() []lookup {
	return []lookup{
		descriptor[result.Person]{
			k:      kind.Person,
			fields: record.PersonFields,
			shape:  shapePerson,
			assign: func(r *result.Result, v []result.Person) { r.People = v },
		},
		descriptor[result.Organization]{
			k:      kind.Organization,
			fields: record.OrganizationFields,
			shape:  shapeOrganization,
			assign: func(r *result.Result, v []result.Organization) { r.Organizations = v },
		},
		descriptor[result.Location]{
			k:      kind.Location,
			fields: record.LocationFields,
			keep:   isPublic,
			shape:  shapeLocation,
			assign: func(r *result.Result, v []result.Location) { r.Locations = v },
		},
		descriptor[result.Production]{
			k:      kind.Production,
			fields: record.ProductionFields,
			shape:  shapeProduction,
			assign: func(r *result.Result, v []result.Production) { r.Productions = v },
		},
	}
}

func isPublic(m *match.Raw) (bool, error) {
	return m.Bool(record.FieldIsPublic)
}

func shapePerson(m *match.Scored) (result.Person, error) {
	skills, err := m.List(record.FieldSkills)
	if err != nil {
		return result.Person{}, err
	}
	name := m.String(record.FieldName)
	return result.Person{
		ID:        m.ID,
		Name:      name,
		Username:  m.String(record.FieldUsername),
		Headline:  m.Optional(record.FieldHeadline),
		Location:  m.Optional(record.FieldLocation),
		Skills:    skills,
		AvatarURL: m.Optional(record.FieldAvatarURL),
		Initials:  canon.Initials(name),
		Score:     m.Score,
	}, nil
}

func shapeOrganization(m *match.Scored) (result.Organization, error) {
	return result.Organization{
		ID:          m.ID,
		Name:        m.String(record.FieldName),
		Slug:        m.String(record.FieldSlug),
		Description: m.Optional(record.FieldDescription),
		Location:    m.Optional(record.FieldLocation),
		Logo:        m.Optional(record.FieldLogo),
		Score:       m.Score,
	}, nil
}

func shapeLocation(m *match.Scored) (result.Location, error) {
	return result.Location{
		ID:          m.ID,
		Name:        m.String(record.FieldName),
		Address:     m.String(record.FieldAddress),
		City:        m.String(record.FieldCity),
		State:       m.String(record.FieldState),
		Description: m.Optional(record.FieldDescription),
		Score:       m.Score,
	}, nil
}

func shapeProduction(m *match.Scored) (result.Production, error) {
	return result.Production{
		ID:          m.ID,
		Title:       m.String(record.FieldTitle),
		Status:      m.String(record.FieldStatus),
		Description: m.Optional(record.FieldDescription),
		Location:    m.Optional(record.FieldLocation),
		Score:       m.Score,
	}, nil
}
