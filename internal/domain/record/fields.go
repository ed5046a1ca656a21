package record

import (
	"encoding/json"
	"strconv"
)

// Stored field names. These are the display attributes written next to a
// record's vector and returned by nearest-neighbor lookups.
const (
	FieldName        = "name"
	FieldUsername    = "username"
	FieldHeadline    = "headline"
	FieldLocation    = "location"
	FieldSkills      = "skills"
	FieldAvatarURL   = "avatar_url"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldLogo        = "logo"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldState       = "state"
	FieldIsPublic    = "is_public"
	FieldTitle       = "title"
	FieldStatus      = "status"
)

// Stored field sets per kind, in the order lookups request them.
var (
	PersonFields       = []string{FieldName, FieldUsername, FieldHeadline, FieldLocation, FieldSkills, FieldAvatarURL}
	OrganizationFields = []string{FieldName, FieldSlug, FieldDescription, FieldLocation, FieldLogo}
	LocationFields     = []string{FieldName, FieldAddress, FieldCity, FieldState, FieldDescription, FieldIsPublic}
	ProductionFields   = []string{FieldTitle, FieldStatus, FieldDescription, FieldLocation}
)

// Fields returns the stored display attributes of the person.
func (p *Person) Fields() map[string]string {
	f := fieldSet{}
	f.put(FieldName, p.Name)
	f.put(FieldUsername, p.Username)
	f.put(FieldHeadline, p.Headline)
	f.put(FieldLocation, p.Location)
	f.putList(FieldSkills, p.Skills)
	f.put(FieldAvatarURL, p.AvatarURL)
	return f
}

// Fields returns the stored display attributes of the organization.
func (o *Organization) Fields() map[string]string {
	f := fieldSet{}
	f.put(FieldName, o.Name)
	f.put(FieldSlug, o.Slug)
	f.put(FieldDescription, o.Description)
	f.put(FieldLocation, o.Location)
	f.put(FieldLogo, o.Logo)
	return f
}

// Fields returns the stored display attributes of the location.
// is_public is always written so the visibility filter never sees a gap.
func (l *Location) Fields() map[string]string {
	f := fieldSet{}
	f.put(FieldName, l.Name)
	f.put(FieldAddress, l.Address)
	f.put(FieldCity, l.City)
	f.put(FieldState, l.State)
	f.put(FieldDescription, l.Description)
	f[FieldIsPublic] = strconv.FormatBool(l.IsPublic)
	return f
}

// Fields returns the stored display attributes of the production.
func (p *Production) Fields() map[string]string {
	f := fieldSet{}
	f.put(FieldTitle, p.Title)
	f.put(FieldStatus, p.Status)
	f.put(FieldDescription, p.Description)
	f.put(FieldLocation, p.Location)
	return f
}

type fieldSet map[string]string

func (f fieldSet) put(name, value string) {
	if Present(value) {
		f[name] = value
	}
}

// putList stores a JSON array; absent lists are stored as [] so readers never branch on presence.
func (f fieldSet) putList(name string, values []string) {
	items := make([]string, 0, len(values))
	for _, v := range values {
		if Present(v) {
			items = append(items, v)
		}
	}
	data, _ := json.Marshal(items) // a []string always marshals
	f[name] = string(data)
}

// Document is one record ready for storage: display fields plus its embedding.
type Document struct {
	ID     string
	Fields map[string]string
	Vector []float32
}
