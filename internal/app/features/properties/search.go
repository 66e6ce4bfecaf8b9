// internal/app/features/properties/search.go
package properties

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/formutil"
	"github.com/dalemusser/listinghub/internal/app/system/normalize"
	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleSearch handles POST /api/properties/search. Matching IDs come from
// the search index; the listings themselves are re-read from the document
// store with an unordered _id lookup.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var q searchindex.Query
	if err := formutil.DecodeJSON(w, r, &q); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	q.Filters.PropertyType = normalize.PropertyType(q.Filters.PropertyType)
	q.Filters.Amenities = normalize.Amenities(q.Filters.Amenities)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hexIDs, err := h.Search.Search(ctx, q, h.SearchSize)
	if err != nil {
		apierr.Write(w, h.Log, searchErr(err))
		return
	}

	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, s := range hexIDs {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			ids = append(ids, oid)
		}
	}

	props, err := h.Props.FindByIDs(ctx, ids)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	views, err := h.withAgents(ctx, props)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, views)
}

func searchErr(err error) error {
	if errors.Is(err, searchindex.ErrUnavailable) {
		return apierr.Wrap(apierr.Unavailable, "Search is temporarily unavailable", err)
	}
	var se *searchindex.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusBadRequest:
			return apierr.Wrap(apierr.Validation, "Invalid search query", err)
		case http.StatusNotFound:
			// index_not_found_exception until the index is created or rebuilt
			return apierr.Wrap(apierr.Unavailable, "Search is temporarily unavailable", err)
		}
	}
	return err
}
