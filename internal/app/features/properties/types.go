// internal/app/features/properties/types.go
package properties

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dalemusser/listinghub/internal/app/system/normalize"
	"github.com/dalemusser/listinghub/internal/domain/models"
)

// propertyView is a property as returned by the API, with the owning
// agent populated when the caller asked for it.
type propertyView struct {
	models.Property
	Agent *models.AgentSummary `json:"agent,omitempty"`
}

// flexFloat accepts a JSON number or a numeric string ("40.7").
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%q is not a number", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts a whole JSON number or a numeric string ("3").
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	if float64(f) != math.Trunc(float64(f)) {
		return fmt.Errorf("%v is not a whole number", float64(f))
	}
	*n = flexInt(f)
	return nil
}

// amenityList accepts ["wifi","gym"] or the comma form "wifi,gym".
type amenityList []string

func (a *amenityList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = normalize.SplitAmenities(s)
		return nil
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return err
	}
	*a = normalize.Amenities(tags)
	return nil
}

// propertyInput is the create/update body. Nil fields were absent.
// A numeric field sent as a blank string counts as absent.
type propertyInput struct {
	Title        *string      `json:"title"`
	Description  *string      `json:"description"`
	Price        *flexFloat   `json:"price"`
	Address      *string      `json:"address"`
	City         *string      `json:"city"`
	State        *string      `json:"state"`
	Zipcode      *string      `json:"zipcode"`
	Lat          *flexFloat   `json:"lat"`
	Lng          *flexFloat   `json:"lng"`
	PropertyType *string      `json:"propertyType"`
	Bedrooms     *flexInt     `json:"bedrooms"`
	Bathrooms    *flexInt     `json:"bathrooms"`
	Area         *flexFloat   `json:"area"`
	Amenities    *amenityList `json:"amenities"`
	FloorPlan    *string      `json:"floorPlan"`
	VirtualTour  *string      `json:"virtualTour"`
	Status       *string      `json:"status"`
}

// numericInputFields are the propertyInput keys decoded as numbers.
var numericInputFields = []string{"price", "lat", "lng", "bedrooms", "bathrooms", "area"}

func (in *propertyInput) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range numericInputFields {
		if isBlankString(raw[k]) {
			delete(raw, k)
		}
	}
	cleaned, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	type plain propertyInput
	return json.Unmarshal(cleaned, (*plain)(in))
}

func isBlankString(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '"' {
		return false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return false
	}
	return strings.TrimSpace(s) == ""
}
