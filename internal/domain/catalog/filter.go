package catalog

import "strings"

// Filter returns the items whose name or category contains term,
// case-insensitively. An empty term matches everything. Input order is
// preserved and the input slice is never mutated.
func Filter(items []Item, term string) []Item {
	if term == "" {
		return append([]Item(nil), items...)
	}

	needle := strings.ToLower(term)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) ||
			strings.Contains(strings.ToLower(it.Category), needle) {
			out = append(out, it)
		}
	}
	return out
}
