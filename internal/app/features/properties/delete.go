// internal/app/features/properties/delete.go
package properties

import (
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/properties/{id}: destroy each remote
// image in order, drop the search entry (best effort), then delete the
// document. A failed image destroy aborts with the property still stored;
// images destroyed before the failure are not restored.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "property delete")
	defer cancel()

	p, err := h.loadOwned(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	if len(p.Images) > 0 && h.Assets == nil {
		apierr.Write(w, h.Log, errNoAssetStore)
		return
	}
	for i, img := range p.Images {
		if err := h.Assets.Destroy(ctx, img.AssetID); err != nil {
			h.Log.Error("image destroy failed",
				zap.String("property_id", p.ID.Hex()),
				zap.String("asset_id", img.AssetID),
				zap.Int("destroyed_before_failure", i),
				zap.Error(err))
			apierr.Write(w, h.Log, err)
			return
		}
	}

	h.Sync.Delete(ctx, p.ID.Hex())

	if _, err := h.Props.Delete(ctx, p.ID); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	h.Log.Info("property deleted", zap.String("property_id", p.ID.Hex()))
	apierr.Msg(w, http.StatusOK, "Property removed")
}
