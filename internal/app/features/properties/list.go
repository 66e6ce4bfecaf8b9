// internal/app/features/properties/list.go
package properties

import (
	"context"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/domain/models"
)

// ServeList handles GET /api/properties: every listing, newest first,
// with the owning agent populated.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	props, err := h.Props.List(ctx)
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

// ServeProperty handles GET /api/properties/{id}.
func (h *Handler) ServeProperty(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.load(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	views, err := h.withAgents(ctx, []models.Property{*p})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, views[0])
}
