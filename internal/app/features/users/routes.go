// internal/app/features/users/routes.go
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
)

// Routes mounts all User routes under the base path (typically "/users"
// from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
	r.Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireActor)

		pr.Put("/{id}", h.HandleUpdate)
		pr.Put("/{id}/avatar", h.HandleSetAvatar)

		shared.MountLifecycle(pr, h.Log, "user", func(*http.Request) (*lifecycle.Manager, error) {
			return h.store().Lifecycle(), nil
		})
	})

	return r
}
