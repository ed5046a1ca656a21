// Package canon turns structured records into the text fed to the embedding model.
//
// Every builder emits "Label: value" fragments in a fixed order, skips absent
// attributes, and joins the fragments with ". ". The same attributes always
// produce byte-identical text; stored vectors are only comparable with fresh
// ones while this holds.
package canon

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/slatesearch/internal/domain/record"
)

const separator = ". "

// Builder canonicalizes records. The clock only feeds derived age sentences.
type Builder struct {
	now func() time.Time
}

// New creates a Builder on the wall clock.
func New() *Builder {
	return &Builder{now: time.Now}
}

// WithClock replaces the clock used for derived dates.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	if now != nil {
		b.now = now
	}
	return b
}

// Person builds the embedding text of a performer profile.
func (b *Builder) Person(p *record.Person) string {
	var f fragments

	f.add("Name", p.Name)
	f.add("Role", p.Headline)

	f.add("Gender", p.Gender)
	if p.AgeRange != nil {
		f.raw(fmt.Sprintf("Age range: %d-%d years old", p.AgeRange.Min, p.AgeRange.Max))
	}
	f.addList("Ethnicity", p.Ethnicity, ", ")
	if p.HeightCM != nil {
		f.raw("Height: " + HeightDisplay(*p.HeightCM))
	}
	f.add("Build", p.BodyType)
	f.add("Hair", p.HairColor)
	f.add("Eyes", p.EyeColor)

	f.add("Location", p.Location)

	f.addList("Skills and abilities", p.Skills, ", ")
	f.addList("Languages", p.Languages, ", ")
	f.addList("Union membership", p.Unions, ", ")

	f.add("Background", p.Bio)
	f.addList("Experience", p.Experience, separator)

	return f.String()
}

// Organization builds the embedding text of a company or agency.
func (b *Builder) Organization(o *record.Organization) string {
	var f fragments

	f.add("Organization", o.Name)
	f.add("Type", o.OrgType)
	f.add("Location", o.Location)
	f.addList("Services", o.Services, ", ")

	if o.FoundedYear != nil {
		age := max(b.now().UTC().Year()-*o.FoundedYear, 0)
		f.raw(fmt.Sprintf("Established %d years ago (founded %d)", age, *o.FoundedYear))
	}
	if o.EmployeesCount != nil {
		n := *o.EmployeesCount
		f.raw(fmt.Sprintf("%s company with %d employees", SizeTier(n), n))
	}

	f.add("Description", o.Description)

	return f.String()
}

// Location builds the embedding text of a venue.
func (b *Builder) Location(l *record.Location) string {
	var f fragments

	f.add("Location", l.Name)
	if place := joinPresent([]string{l.City, l.State, l.Country}, ", "); place != "" {
		f.raw("Located in " + place)
	}
	f.add("Description", l.Description)
	f.addList("Amenities and features", l.Amenities, ", ")
	if l.MaxCapacity != nil {
		f.raw(fmt.Sprintf("Maximum capacity: %d people", *l.MaxCapacity))
	}
	f.add("Parking", l.ParkingInfo)
	f.addList("Restrictions", l.Restrictions, ", ")

	return f.String()
}

// Production builds the embedding text of a project.
func (b *Builder) Production(p *record.Production) string {
	var f fragments

	f.add("Production", p.Title)
	f.add("Type", p.ProductionType)
	f.add("Status", p.Status)

	if record.Present(p.StartDate) {
		if record.Present(p.EndDate) {
			f.raw(fmt.Sprintf("Scheduled from %s to %s", p.StartDate, p.EndDate))
		} else {
			f.raw("Starts on " + p.StartDate)
		}
	}

	f.add("Filming location", p.Location)
	f.add("Description", p.Description)

	return f.String()
}

// Initials returns the uppercased first letters of the first two words of name.
func Initials(name string) string {
	var sb strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

// HeightDisplay renders a metric height with its imperial reading: 180 cm (5'11").
func HeightDisplay(cm int) string {
	totalInches := int(math.Round(float64(cm) / 2.54))
	return fmt.Sprintf("%d cm (%d'%d\")", cm, totalInches/12, totalInches%12)
}

// SizeTier classifies an organization by head count.
func SizeTier(employees int) string {
	switch {
	case employees <= 10:
		return "small"
	case employees <= 50:
		return "medium"
	case employees <= 200:
		return "large"
	default:
		return "enterprise"
	}
}

// fragments accumulates sentence fragments in insertion order.
type fragments []string

func (f *fragments) add(label, value string) {
	if record.Present(value) {
		*f = append(*f, label+": "+value)
	}
}

func (f *fragments) addList(label string, values []string, sep string) {
	if joined := joinPresent(values, sep); joined != "" {
		*f = append(*f, label+": "+joined)
	}
}

func (f *fragments) raw(text string) {
	*f = append(*f, text)
}

func (f fragments) String() string {
	return strings.Join(f, separator)
}

// joinPresent joins the non-blank values; blank list items never leave ", ," gaps.
func joinPresent(values []string, sep string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if record.Present(v) {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}
