// internal/app/features/authn/routes.go
package authn

import "github.com/go-chi/chi/v5"

// Routes mounts the auth routes under the base path (typically "/auth"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Get("/me", h.HandleMe)

	r.Group(func(pr chi.Router) {
		pr.Use(h.SM.RequireActor)
		pr.Post("/invites", h.HandleCreateInvite)
	})
	r.Post("/register", h.HandleRegister)

	return r
}
