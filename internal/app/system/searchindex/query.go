// internal/app/system/searchindex/query.go
package searchindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultRadius applies when a location filter names no radius.
const DefaultRadius = "10km"

// PriceRange is inclusive at both bounds. A nil bound is open.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Distance is an Elasticsearch distance string ("5km", "2mi"). In JSON it
// may also be a bare number, read as kilometres.
type Distance string

func (d *Distance) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Distance(strings.TrimSpace(s))
		return nil
	}
	if string(b) == "null" {
		*d = ""
		return nil
	}
	var km float64
	if err := json.Unmarshal(b, &km); err != nil {
		return fmt.Errorf("radius must be a number or a distance string: %w", err)
	}
	if km <= 0 {
		*d = ""
		return nil
	}
	*d = Distance(fmt.Sprintf("%gkm", km))
	return nil
}

// GeoFilter restricts results to a circle around Lat/Lon. RadiusKm is used
// when Radius is empty.
type GeoFilter struct {
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	RadiusKm float64  `json:"radiusKm,omitempty"`
	Radius   Distance `json:"radius,omitempty"`
}

// Filters are the structured search constraints.
type Filters struct {
	PriceRange   *PriceRange `json:"priceRange,omitempty"`
	PropertyType string      `json:"propertyType,omitempty"`
	Amenities    []string    `json:"amenities,omitempty"`
	Location     *GeoFilter  `json:"location,omitempty"`
}

// Query is a free-text query plus filters.
type Query struct {
	Text    string  `json:"query"`
	Filters Filters `json:"filters"`
}

// textFields are searched by the free-text part of a query.
var textFields = []string{"title", "description", "address", "city"}

func (g *GeoFilter) distance() string {
	if r := strings.TrimSpace(string(g.Radius)); r != "" {
		return r
	}
	if g.RadiusKm > 0 {
		return fmt.Sprintf("%gkm", g.RadiusKm)
	}
	return DefaultRadius
}

// BuildQuery translates q into an Elasticsearch search body. Amenities
// match any-of. size caps the number of hits; zero leaves the index
// default.
func BuildQuery(q Query, size int) map[string]any {
	must := []any{}
	filter := []any{}

	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"fields":    textFields,
				"fuzziness": "AUTO",
			},
		})
	}

	f := q.Filters
	if pr := f.PriceRange; pr != nil && (pr.Min != nil || pr.Max != nil) {
		bounds := map[string]any{}
		if pr.Min != nil {
			bounds["gte"] = *pr.Min
		}
		if pr.Max != nil {
			bounds["lte"] = *pr.Max
		}
		filter = append(filter, map[string]any{
			"range": map[string]any{"price": bounds},
		})
	}

	if pt := strings.TrimSpace(f.PropertyType); pt != "" {
		filter = append(filter, map[string]any{
			"term": map[string]any{"propertyType": pt},
		})
	}

	if len(f.Amenities) > 0 {
		filter = append(filter, map[string]any{
			"terms": map[string]any{"amenities": f.Amenities},
		})
	}

	if loc := f.Location; loc != nil && loc.Lat != nil && loc.Lon != nil {
		filter = append(filter, map[string]any{
			"geo_distance": map[string]any{
				"distance": loc.distance(),
				"location": map[string]any{"lat": *loc.Lat, "lon": *loc.Lon},
			},
		})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []any{
			map[string]any{"createdAt": map[string]any{"order": "desc"}},
		},
		"_source": false,
	}
	if size > 0 {
		body["size"] = size
	}
	return body
}
