// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PropertyType trims and lowercases a property type.
func PropertyType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Amenities trims and lowercases each tag, dropping blanks and duplicates.
// Input order is kept. Returns an empty, non-nil slice for no tags.
func Amenities(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitAmenities splits the comma-separated form the listing forms post.
func SplitAmenities(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return Amenities(strings.Split(s, ","))
}
