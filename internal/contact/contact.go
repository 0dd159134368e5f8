// Package contact models the people in a plain-text contacts file and
// loads and filters them.
package contact

import (
	"sort"
	"strings"
	"time"
)

// Keys with derived behaviour.
const (
	DOBKey  = "dob"
	OrgKey  = "Org"
	RoleKey = "Role"
)

// now is the clock used for age calculations.
var now = time.Now

// Attribute is a single key/value line of a contact.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Contact is one record of the contacts file.
type Contact struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
	Notes      []string    `json:"notes"`
}

// Matches reports whether the already-lowercased pattern occurs in the
// contact's name, any attribute value, or any note. Keys are not searched.
func (c Contact) Matches(pattern string) bool {
	if strings.Contains(strings.ToLower(c.Name), pattern) {
		return true
	}

	for _, a := range c.Attributes {
		if strings.Contains(strings.ToLower(a.Value), pattern) {
			return true
		}
	}

	for _, note := range c.Notes {
		if strings.Contains(strings.ToLower(note), pattern) {
			return true
		}
	}

	return false
}

// Get returns every value stored under key, in file order. A "dob" value
// that parses as a date carries an " (aged N)" suffix.
func (c Contact) Get(key string) []string {
	values := []string{}
	isDOB := strings.EqualFold(key, DOBKey)

	for _, a := range c.Attributes {
		if a.Key != key {
			continue
		}
		v := a.Value
		if isDOB {
			v += AgeSuffix(v, now())
		}
		values = append(values, v)
	}

	return values
}

// SortAttributes returns a copy of attrs ordered by key, then value.
func SortAttributes(attrs []Attribute) []Attribute {
	sorted := make([]Attribute, len(attrs))
	copy(sorted, attrs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Key != sorted[j].Key {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Value < sorted[j].Value
	})

	return sorted
}

// SortByName orders contacts by name in place.
func SortByName(contacts []Contact) {
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].Name < contacts[j].Name
	})
}
