// internal/app/system/searchindex/mapping.go
package searchindex

import "time"

// GeoPoint is an Elasticsearch geo_point in object form.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Entry is the indexed projection of a property.
type Entry struct {
	ID           string    `json:"-"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	Price        float64   `json:"price"`
	Location     GeoPoint  `json:"location"`
	Amenities    []string  `json:"amenities"`
	PropertyType string    `json:"propertyType"`
	CreatedAt    time.Time `json:"createdAt"`
}

var propertyMapping = map[string]any{
	"properties": map[string]any{
		"title":        map[string]any{"type": "text"},
		"description":  map[string]any{"type": "text"},
		"address":      map[string]any{"type": "text"},
		"city":         map[string]any{"type": "text"},
		"price":        map[string]any{"type": "double"},
		"location":     map[string]any{"type": "geo_point"},
		"amenities":    map[string]any{"type": "keyword"},
		"propertyType": map[string]any{"type": "keyword"},
		"createdAt":    map[string]any{"type": "date"},
	},
}
