// Package record holds the structured attributes of each searchable record kind.
//
// Optional text attributes are absent when empty or blank. Optional numeric
// attributes are pointers so that zero stays a real value.
package record

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kailas-cloud/slatesearch/internal/domain"
)

// AgeRange is the playable age range of a performer.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Person is a performer or crew profile.
type Person struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	Headline   string    `json:"headline,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Location   string    `json:"location,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	AgeRange   *AgeRange `json:"age_range,omitempty"`
	Ethnicity  []string  `json:"ethnicity,omitempty"`
	HeightCM   *int      `json:"height_cm,omitempty"`
	BodyType   string    `json:"body_type,omitempty"`
	HairColor  string    `json:"hair_color,omitempty"`
	EyeColor   string    `json:"eye_color,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	Languages  []string  `json:"languages,omitempty"`
	Unions     []string  `json:"unions,omitempty"`
	Experience []string  `json:"experience,omitempty"`
}

// Organization is a company, agency, or studio.
type Organization struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	OrgType        string   `json:"org_type"`
	Description    string   `json:"description,omitempty"`
	Location       string   `json:"location,omitempty"`
	Logo           string   `json:"logo,omitempty"`
	Services       []string `json:"services,omitempty"`
	FoundedYear    *int     `json:"founded_year,omitempty"`
	EmployeesCount *int     `json:"employees_count,omitempty"`
}

// Location is a shooting location or venue.
type Location struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Country      string   `json:"country"`
	Description  string   `json:"description,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	Restrictions []string `json:"restrictions,omitempty"`
	MaxCapacity  *int     `json:"max_capacity,omitempty"`
	ParkingInfo  string   `json:"parking_info,omitempty"`
	IsPublic     bool     `json:"is_public"`
}

// Production is a film, series, commercial, or stage project.
type Production struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ProductionType string `json:"production_type"`
	Status         string `json:"status"`
	Description    string `json:"description,omitempty"`
	Location       string `json:"location,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
}

// Validate checks the attributes required for indexing.
func (p *Person) Validate() error {
	return require("person", p.ID, map[string]string{"name": p.Name})
}

// Validate checks the attributes required for indexing.
func (o *Organization) Validate() error {
	return require("organization", o.ID, map[string]string{"name": o.Name, "org_type": o.OrgType})
}

// Validate checks the attributes required for indexing.
func (l *Location) Validate() error {
	return require("location", l.ID, map[string]string{
		"name": l.Name, "city": l.City, "state": l.State, "country": l.Country,
	})
}

// Validate checks the attributes required for indexing.
func (p *Production) Validate() error {
	return require("production", p.ID, map[string]string{
		"title": p.Title, "production_type": p.ProductionType, "status": p.Status,
	})
}

// Present reports whether an optional text attribute carries a value.
func Present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func require(kind, id string, fields map[string]string) error {
	if !Present(id) {
		return fmt.Errorf("%s: id is required: %w", kind, domain.ErrInvalidRecord)
	}
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if !Present(fields[name]) {
			return fmt.Errorf("%s %s: %s is required: %w", kind, id, name, domain.ErrInvalidRecord)
		}
	}
	return nil
}
