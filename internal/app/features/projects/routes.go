// internal/app/features/projects/routes.go
package projects

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
)

// Register attaches the Project routes. It registers onto the caller's
// router instead of returning its own so the tasks feature can share the
// "/projects/{id}" subtree.
func Register(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireActor)

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)

		shared.MountLifecycle(pr, h.Log, "project", func(*http.Request) (*lifecycle.Manager, error) {
			return h.store().Lifecycle(), nil
		})
	})
}
