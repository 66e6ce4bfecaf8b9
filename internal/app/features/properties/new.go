// internal/app/features/properties/new.go
package properties

import (
	"context"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/authz"
	"github.com/dalemusser/listinghub/internal/app/system/formutil"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /api/properties. The caller becomes the
// owning agent. Routes restrict this to agents and admins.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, agentID, ok := authz.UserCtx(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorizedf("Not authorized to access this route"))
		return
	}

	var in propertyInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if in.Lat == nil || in.Lng == nil {
		apierr.Write(w, h.Log, apierr.New(apierr.Validation, "lat and lng are required"))
		return
	}
	if in.Price == nil {
		apierr.Write(w, h.Log, apierr.New(apierr.Validation, "price is required"))
		return
	}

	p := models.Property{AgentID: agentID, Location: models.NewPoint(0, 0)}
	if err := apply(&p, in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Props.Create(ctx, p)
	if err != nil {
		apierr.Write(w, h.Log, storeErr(err))
		return
	}
	h.Sync.Upsert(ctx, &created)

	h.Log.Info("property created",
		zap.String("property_id", created.ID.Hex()),
		zap.String("agent_id", agentID.Hex()))
	apierr.JSON(w, http.StatusOK, propertyView{Property: created})
}
