package metricsstore

import (
	"context"

	propertystore "github.com/dalemusser/listinghub/internal/app/store/properties"
	userstore "github.com/dalemusser/listinghub/internal/app/store/users"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Users      int64 `json:"usersCount"`
	Properties int64 `json:"propertiesCount"`
	Agents     int64 `json:"agentsCount"`
}

// FetchDashboardCounts returns the high-level counts used by the admin
// dashboard. Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts
	users := userstore.New(db)

	if n, err := users.Count(ctx); err == nil {
		out.Users = n
	}
	if n, err := propertystore.New(db).Count(ctx); err == nil {
		out.Properties = n
	}
	if n, err := users.CountByRole(ctx, models.RoleAgent); err == nil {
		out.Agents = n
	}

	return out
}
