// internal/app/features/roles/routes.go
package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
)

// Routes mounts all Role routes under the base path (typically "/roles"
// from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireActor)

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Put("/{id}/access", h.HandleSetAccess)

		shared.MountLifecycle(pr, h.Log, "role", func(*http.Request) (*lifecycle.Manager, error) {
			return h.store().Lifecycle(), nil
		})
	})

	return r
}
