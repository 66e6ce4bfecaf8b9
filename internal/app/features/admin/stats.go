// internal/app/features/admin/stats.go
package admin

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/listinghub/internal/app/store/metrics"
	propertystore "github.com/dalemusser/listinghub/internal/app/store/properties"
	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const recentLimit = 5

type recentProperty struct {
	models.Property
	Agent *models.AgentSummary `json:"agent,omitempty"`
}

type statsResponse struct {
	metricsstore.Counts
	PropertiesByType   []propertystore.GroupCount `json:"propertiesByType"`
	PropertiesByStatus []propertystore.GroupCount `json:"propertiesByStatus"`
	RecentProperties   []recentProperty           `json:"recentProperties"`
	RecentUsers        []models.User              `json:"recentUsers"`
}

// ServeStats handles GET /api/admin/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out := statsResponse{Counts: metricsstore.FetchDashboardCounts(ctx, h.DB)}

	var err error
	if out.PropertiesByType, err = h.Props.CountByField(ctx, "property_type"); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if out.PropertiesByStatus, err = h.Props.CountByField(ctx, "status"); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	props, err := h.Props.Recent(ctx, recentLimit)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if out.RecentProperties, err = h.withAgents(ctx, props); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	if out.RecentUsers, err = h.Users.Recent(ctx, recentLimit); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	apierr.JSON(w, http.StatusOK, out)
}

func (h *Handler) withAgents(ctx context.Context, props []models.Property) ([]recentProperty, error) {
	ids := make([]primitive.ObjectID, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.AgentID)
	}
	agents, err := h.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]recentProperty, 0, len(props))
	for _, p := range props {
		rp := recentProperty{Property: p}
		if a, ok := agents[p.AgentID]; ok {
			rp.Agent = &a
		}
		out = append(out, rp)
	}
	return out, nil
}
