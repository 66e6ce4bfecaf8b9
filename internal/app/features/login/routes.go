// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account endpoints under /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.With(h.Auth.RequireUser).Get("/user", h.ServeCurrentUser)
	return r
}
