// internal/app/features/media/routes.go
package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
)

// Routes mounts all Media routes under the base path (typically "/media"
// from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
	r.Get("/{id}/content", h.HandleDownload)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireActor)

		pr.Post("/", h.HandleUpload)
		pr.Put("/{id}", h.HandleRename)

		mf := func(*http.Request) (*lifecycle.Manager, error) {
			return h.store().Lifecycle(), nil
		}
		pr.Patch("/{id}/status", func(w http.ResponseWriter, req *http.Request) {
			shared.ToggleStatus(w, req, h.Log, "media record", "id", mf)
		})
		pr.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			shared.SoftDelete(w, req, h.Log, "media record", "id", mf)
		})
		pr.Post("/{id}/restore", func(w http.ResponseWriter, req *http.Request) {
			shared.Restore(w, req, h.Log, "media record", "id", mf)
		})
		// Purge also removes the stored bytes, so it has its own handler.
		pr.Delete("/{id}/purge", h.HandlePurge)
	})

	return r
}
