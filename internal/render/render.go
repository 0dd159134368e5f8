// Package render prints contacts for a terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
	"github.com/mfenderov/contacts/internal/contact"
)

// NoMatches is printed when the filter keeps nothing.
const NoMatches = "No matching contacts found"

type styles struct {
	count lipgloss.Style
	name  lipgloss.Style
	org   lipgloss.Style
	attr  lipgloss.Style
	note  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		count: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("78")),
		name: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		org: r.NewStyle().
			Foreground(lipgloss.Color("39")),
		attr: r.NewStyle().
			Foreground(lipgloss.Color("252")),
		note: r.NewStyle().
			Foreground(lipgloss.Color("220")),
	}
}

// Renderer writes contacts in the fixed terminal layout.
type Renderer struct {
	w      io.Writer
	hidden map[string]bool
	style  styles
	now    func() time.Time
}

// New creates a Renderer writing to w. Attributes whose key is in hiddenKeys
// are not listed.
func New(w io.Writer, hiddenKeys []string) *Renderer {
	hidden := make(map[string]bool, len(hiddenKeys))
	for _, k := range hiddenKeys {
		hidden[k] = true
	}

	return &Renderer{
		w:      w,
		hidden: hidden,
		style:  newStyles(lipgloss.NewRenderer(w)),
		now:    time.Now,
	}
}

// Render prints the match count and every contact in name order.
func (r *Renderer) Render(contacts []contact.Contact) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(r.w, NoMatches)
		return err
	}

	sorted := sortedCopy(contacts)
	longest := r.longestKey(sorted)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(r.style.count.Render("Found "+english.Plural(len(sorted), "contact", "")+":") + "\n")

	for _, c := range sorted {
		r.writeContact(&b, c, longest)
	}
	b.WriteString("\n")

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) writeContact(b *strings.Builder, c contact.Contact, longest int) {
	b.WriteString("\n")
	b.WriteString(r.style.name.Render(c.Name))
	if summary := c.OrgAndRole(); summary != "" {
		b.WriteString(r.style.org.Render(summary))
	}
	b.WriteString("\n\n")

	for _, a := range contact.SortAttributes(c.Attributes) {
		if r.hidden[a.Key] {
			continue
		}

		value := a.Value
		if strings.EqualFold(a.Key, contact.DOBKey) {
			value += contact.AgeSuffix(a.Value, r.now())
		}

		dots := strings.Repeat(".", longest-utf8.RuneCountInString(a.Key)+3)
		b.WriteString(r.style.attr.Render("   "+FormatKey(a.Key)+" "+dots+" "+value) + "\n")
	}

	for _, note := range c.Notes {
		b.WriteString(r.style.note.Render("   - "+note) + "\n")
	}
}

// longestKey is the rune length of the longest visible key.
func (r *Renderer) longestKey(contacts []contact.Contact) int {
	longest := 0
	for _, c := range contacts {
		for _, a := range c.Attributes {
			if r.hidden[a.Key] {
				continue
			}
			longest = max(longest, utf8.RuneCountInString(a.Key))
		}
	}
	return longest
}

// FormatKey upper-cases short keys ("dob" -> "DOB") and capitalises the
// rest ("PHONE" -> "Phone").
func FormatKey(key string) string {
	if utf8.RuneCountInString(key) <= 3 {
		return strings.ToUpper(key)
	}

	first, size := utf8.DecodeRuneInString(key)
	return strings.ToUpper(string(first)) + strings.ToLower(key[size:])
}

type jsonContact struct {
	Name       string              `json:"name"`
	OrgAndRole string              `json:"org_and_role,omitempty"`
	Attributes []contact.Attribute `json:"attributes"`
	Notes      []string            `json:"notes"`
}

// RenderJSON writes contacts as an indented JSON array in name order.
func RenderJSON(w io.Writer, contacts []contact.Contact) error {
	out := make([]jsonContact, 0, len(contacts))
	for _, c := range sortedCopy(contacts) {
		out = append(out, jsonContact{
			Name:       c.Name,
			OrgAndRole: strings.TrimSuffix(strings.TrimPrefix(c.OrgAndRole(), " ("), ")"),
			Attributes: nonNil(c.Attributes),
			Notes:      nonNil(c.Notes),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func sortedCopy(contacts []contact.Contact) []contact.Contact {
	sorted := make([]contact.Contact, len(contacts))
	copy(sorted, contacts)
	contact.SortByName(sorted)
	return sorted
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
