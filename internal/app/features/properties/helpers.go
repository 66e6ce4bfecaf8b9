// internal/app/features/properties/helpers.go
package properties

import (
	"context"
	"errors"
	"net/http"
	"strings"

	propertystore "github.com/dalemusser/listinghub/internal/app/store/properties"
	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/app/system/authz"
	"github.com/dalemusser/listinghub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/listinghub/internal/app/system/normalize"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var errPropertyNotFound = apierr.NotFoundf("Property not found")

// propertyID parses the {id} route param. A malformed id is reported as
// not found, the same as an unknown one.
func propertyID(r *http.Request) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, errPropertyNotFound
	}
	return oid, nil
}

// load fetches the {id} property.
func (h *Handler) load(ctx context.Context, r *http.Request) (*models.Property, error) {
	oid, err := propertyID(r)
	if err != nil {
		return nil, err
	}
	p, err := h.Props.GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errPropertyNotFound
	}
	return p, err
}

// loadOwned fetches the {id} property and checks that the caller may
// modify it.
func (h *Handler) loadOwned(ctx context.Context, r *http.Request) (*models.Property, error) {
	p, err := h.load(ctx, r)
	if err != nil {
		return nil, err
	}
	actor, _ := auth.CurrentUser(r)
	if !authz.CanModifyProperty(actor, p) {
		return nil, apierr.Forbiddenf("User not authorized")
	}
	return p, nil
}

// storeErr maps document-store validation failures to 400.
func storeErr(err error) error {
	if errors.Is(err, propertystore.ErrInvalid) {
		msg := strings.TrimPrefix(err.Error(), propertystore.ErrInvalid.Error()+": ")
		return apierr.Wrap(apierr.Validation, msg, err)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errPropertyNotFound
	}
	return err
}

// withAgents populates the owning agent of each property.
func (h *Handler) withAgents(ctx context.Context, props []models.Property) ([]propertyView, error) {
	ids := make([]primitive.ObjectID, 0, len(props))
	seen := make(map[primitive.ObjectID]struct{}, len(props))
	for _, p := range props {
		if _, ok := seen[p.AgentID]; ok {
			continue
		}
		seen[p.AgentID] = struct{}{}
		ids = append(ids, p.AgentID)
	}

	agents, err := h.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]propertyView, 0, len(props))
	for _, p := range props {
		v := propertyView{Property: p}
		if a, ok := agents[p.AgentID]; ok {
			a := a
			v.Agent = &a
		}
		out = append(out, v)
	}
	return out, nil
}

// apply copies the present fields of in onto p. Free text is reduced to
// plain text before it is stored.
func apply(p *models.Property, in propertyInput) error {
	if in.Title != nil {
		p.Title = htmlsanitize.PlainText(*in.Title)
	}
	if in.Description != nil {
		p.Description = htmlsanitize.PlainText(*in.Description)
	}
	if in.Price != nil {
		p.Price = float64(*in.Price)
	}
	if in.Address != nil {
		p.Location.Address = htmlsanitize.PlainText(*in.Address)
	}
	if in.City != nil {
		p.Location.City = htmlsanitize.PlainText(*in.City)
	}
	if in.State != nil {
		p.Location.State = htmlsanitize.PlainText(*in.State)
	}
	if in.Zipcode != nil {
		p.Location.Zipcode = htmlsanitize.PlainText(*in.Zipcode)
	}
	switch {
	case in.Lat != nil && in.Lng != nil:
		p.Location.Type = "Point"
		p.Location.Coordinates = []float64{float64(*in.Lng), float64(*in.Lat)}
	case in.Lat != nil || in.Lng != nil:
		return apierr.New(apierr.Validation, "lat and lng must be given together")
	}
	if in.PropertyType != nil {
		p.PropertyType = normalize.PropertyType(*in.PropertyType)
	}
	if in.Bedrooms != nil {
		p.Bedrooms = int(*in.Bedrooms)
	}
	if in.Bathrooms != nil {
		p.Bathrooms = int(*in.Bathrooms)
	}
	if in.Area != nil {
		p.Area = float64(*in.Area)
	}
	if in.Amenities != nil {
		p.Amenities = []string(*in.Amenities)
	}
	if in.Status != nil {
		p.Status = strings.ToLower(strings.TrimSpace(*in.Status))
	}

	if in.FloorPlan != nil {
		u := strings.TrimSpace(*in.FloorPlan)
		if u != "" && !urlutil.IsValidAbsHTTPURL(u) {
			return apierr.New(apierr.Validation, "floorPlan must be an absolute http(s) URL")
		}
		p.FloorPlan = u
	}
	if in.VirtualTour != nil {
		u := strings.TrimSpace(*in.VirtualTour)
		if u != "" && !urlutil.IsValidAbsHTTPURL(u) {
			return apierr.New(apierr.Validation, "virtualTour must be an absolute http(s) URL")
		}
		p.VirtualTour = u
	}
	return nil
}
