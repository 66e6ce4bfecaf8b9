// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin endpoints under /api/admin. Every route needs a
// bearer token for an admin account.
func Routes(h *Handler, authMgr *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(authMgr.RequireUser)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/stats", h.ServeStats)
	r.Get("/users", h.ServeUsers)
	r.Put("/users/{id}/role", h.HandleUpdateRole)
	r.Delete("/users/{id}", h.HandleDeleteUser)
	r.Post("/reindex", h.HandleReindex)
	return r
}
