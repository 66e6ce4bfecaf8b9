// internal/domain/models/property.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyType values.
const (
	TypeHouse      = "house"
	TypeApartment  = "apartment"
	TypeCondo      = "condo"
	TypeLand       = "land"
	TypeCommercial = "commercial"
)

// Property status values.
const (
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusSold      = "sold"
)

// IsValidPropertyType reports whether t is a known property type.
func IsValidPropertyType(t string) bool {
	switch t {
	case TypeHouse, TypeApartment, TypeCondo, TypeLand, TypeCommercial:
		return true
	}
	return false
}

// IsValidPropertyStatus reports whether s is a known listing status.
func IsValidPropertyStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	}
	return false
}

// Location is a GeoJSON point plus the free-text address.
// Coordinates are stored [lng, lat] so the 2dsphere index can use them.
type Location struct {
	Type        string    `bson:"type" json:"type"` // always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	State       string    `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode     string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
}

// NewPoint builds a Location point from latitude and longitude.
func NewPoint(lat, lng float64) Location {
	return Location{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Lat returns the latitude, or 0 when the point is incomplete.
func (l Location) Lat() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

// Lng returns the longitude, or 0 when the point is incomplete.
func (l Location) Lng() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

// ValidCoordinates reports whether the point carries an in-range lat/lng pair.
func (l Location) ValidCoordinates() bool {
	if len(l.Coordinates) != 2 {
		return false
	}
	lat, lng := l.Lat(), l.Lng()
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Image is one hosted image attached to a property.
type Image struct {
	URL     string `bson:"url" json:"url"`
	AssetID string `bson:"asset_id" json:"assetId"`
}

// Property is a listing owned by an agent (or admin).
type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	Location     Location           `bson:"location" json:"location"`
	PropertyType string             `bson:"property_type" json:"propertyType"`
	Bedrooms     int                `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    int                `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Area         float64            `bson:"area,omitempty" json:"area,omitempty"`
	Amenities    []string           `bson:"amenities" json:"amenities"`
	Images       []Image            `bson:"images" json:"images"`
	FloorPlan    string             `bson:"floor_plan,omitempty" json:"floorPlan,omitempty"`
	VirtualTour  string             `bson:"virtual_tour,omitempty" json:"virtualTour,omitempty"`
	Status       string             `bson:"status" json:"status"`
	AgentID      primitive.ObjectID `bson:"agent_id" json:"agentId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
