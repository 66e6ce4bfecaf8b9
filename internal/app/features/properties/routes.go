// internal/app/features/properties/routes.go
package properties

import (
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the listing endpoints under /api/properties. Reads and
// search are public; writes need a bearer token, and ownership is checked
// per request.
func Routes(h *Handler, authMgr *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/search", h.HandleSearch)
	r.Get("/{id}", h.ServeProperty)

	r.Group(func(pr chi.Router) {
		pr.Use(authMgr.RequireUser)
		pr.With(auth.RequireRole(models.RoleAgent, models.RoleAdmin)).Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Put("/{id}/images", h.HandleAttachImages)
		pr.Delete("/{id}/images/{imageId}", h.HandleDetachImage)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
