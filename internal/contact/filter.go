package contact

import "strings"

// Filter returns the contacts that match every pattern, in input order.
// Patterns are lowercased before matching; no patterns keeps everything.
func Filter(contacts []Contact, patterns []string) []Contact {
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}

	filtered := []Contact{}
	for _, c := range contacts {
		if matchesAll(c, lowered) {
			filtered = append(filtered, c)
		}
	}

	return filtered
}

func matchesAll(c Contact, patterns []string) bool {
	for _, p := range patterns {
		if !c.Matches(p) {
			return false
		}
	}
	return true
}
