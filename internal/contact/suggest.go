package contact

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the contact whose name is closest to query by edit
// distance, for "did you mean" hints when a search comes back empty.
// It returns false for a blank query or when nothing is close enough.
func (s *Store) Suggest(query string) (Contact, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Contact{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := suggestLimit(q)
	best, bestDist := -1, limit+1
	for i, c := range s.contacts {
		d := nameDistance(q, c)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Contact{}, false
	}
	return s.contacts[best], true
}

// suggestLimit is the largest edit distance still considered a typo.
func suggestLimit(q string) int {
	return max(2, utf8.RuneCountInString(q)/3)
}

// nameDistance is the smallest distance between q and the first name,
// last name or full name of c.
func nameDistance(q string, c Contact) int {
	d := levenshtein.ComputeDistance(q, strings.ToLower(c.FullName()))
	for _, part := range []string{c.FirstName, c.LastName} {
		if part == "" {
			continue
		}
		d = min(d, levenshtein.ComputeDistance(q, strings.ToLower(part)))
	}
	return d
}
