// internal/app/features/tasks/routes.go
package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/system/auth"
)

// Register attaches the task-board routes onto the "/projects" router,
// sharing its "{id}" project parameter. Child records use "{childID}".
func Register(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Get("/{id}/groups", h.HandleListGroups)
	r.Get("/{id}/groups/{childID}", h.HandleGetGroup)
	r.Get("/{id}/labels", h.HandleListLabels)
	r.Get("/{id}/tasks", h.HandleListTasks)
	r.Get("/{id}/tasks/{childID}", h.HandleGetTask)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireActor)

		pr.Post("/{id}/groups", h.HandleCreateGroup)
		pr.Put("/{id}/groups/{childID}", h.HandleUpdateGroup)
		mountChildLifecycle(pr, h, "/{id}/groups/{childID}", "group", h.groupManager)

		pr.Post("/{id}/labels", h.HandleCreateLabel)
		pr.Put("/{id}/labels/{childID}", h.HandleUpdateLabel)
		mountChildLifecycle(pr, h, "/{id}/labels/{childID}", "label", h.labelManager)

		pr.Post("/{id}/tasks", h.HandleCreateTask)
		pr.Put("/{id}/tasks/{childID}", h.HandleUpdateTask)
		mountChildLifecycle(pr, h, "/{id}/tasks/{childID}", "task", h.taskManager)
	})
}

func mountChildLifecycle(r chi.Router, h *Handler, base, noun string, mf shared.ManagerFunc) {
	r.Patch(base+"/status", func(w http.ResponseWriter, req *http.Request) {
		shared.ToggleStatus(w, req, h.Log, noun, "childID", mf)
	})
	r.Delete(base, func(w http.ResponseWriter, req *http.Request) {
		shared.SoftDelete(w, req, h.Log, noun, "childID", mf)
	})
	r.Post(base+"/restore", func(w http.ResponseWriter, req *http.Request) {
		shared.Restore(w, req, h.Log, noun, "childID", mf)
	})
	r.Delete(base+"/purge", func(w http.ResponseWriter, req *http.Request) {
		shared.Purge(w, req, h.Log, noun, "childID", mf)
	})
}
