// Package kind enumerates the record kinds the directory can search.
package kind

import "fmt"

// Kind is a searchable record kind.
type Kind string

// Record kinds. The set is closed: every search fans out to exactly these four.
const (
	Person       Kind = "person"
	Organization Kind = "organization"
	Location     Kind = "location"
	Production   Kind = "production"
)

// All returns every kind in display order.
func All() []Kind {
	return []Kind{Person, Organization, Location, Production}
}

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Person || k == Organization || k == Location || k == Production
}

// Parse validates a kind name.
func Parse(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown record kind %q", s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }

// KeyPrefix returns the key space of the kind's records: "<prefix><kind>:".
func (k Kind) KeyPrefix(prefix string) string {
	return prefix + string(k) + ":"
}

// IndexName returns the FT index name of the kind: "<prefix><kind>:idx".
func (k Kind) IndexName(prefix string) string {
	return prefix + string(k) + ":idx"
}
