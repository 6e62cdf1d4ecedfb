// internal/app/features/features/routes.go
package features

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
)

// Routes mounts all Feature routes under the base path (typically
// "/features" from bootstrap). Reads are open; writes need a session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireActor)

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)

		shared.MountLifecycle(pr, h.Log, "feature", func(*http.Request) (*lifecycle.Manager, error) {
			return h.store().Lifecycle(), nil
		})
	})

	return r
}
