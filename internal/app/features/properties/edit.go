// internal/app/features/properties/edit.go
package properties

import (
	"context"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/formutil"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
)

// HandleUpdate handles PUT /api/properties/{id}. Absent fields keep their
// stored values. Concurrent updates are not serialized; the last write wins.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in propertyInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.loadOwned(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := apply(p, in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	updated, err := h.Props.Update(ctx, p)
	if err != nil {
		apierr.Write(w, h.Log, storeErr(err))
		return
	}
	h.Sync.Upsert(ctx, updated)

	apierr.JSON(w, http.StatusOK, propertyView{Property: *updated})
}
