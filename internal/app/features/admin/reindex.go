// internal/app/features/admin/reindex.go
package admin

import (
	"errors"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
)

// HandleReindex handles POST /api/admin/reindex: rewrite every search
// entry from the document store and drain the dead-letter set.
func (h *Handler) HandleReindex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), 4*timeouts.Long(), h.Log, "search reindex")
	defer cancel()

	res, err := h.Reindex.Reindex(ctx, h.Props)
	if errors.Is(err, searchindex.ErrUnavailable) {
		apierr.Write(w, h.Log, apierr.Wrap(apierr.Unavailable, "Search index is unavailable", err))
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, res)
}
