// internal/app/features/tasks/handler.go
package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	taskgroupstore "github.com/taskhub/taskhub/internal/app/store/taskgroups"
	taskliststore "github.com/taskhub/taskhub/internal/app/store/tasklists"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler is the feature-level entry point for a project's task board:
// groups, labels, and tasks, all embedded children of the per-project
// aggregate roots.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new Tasks handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) groups() *taskgroupstore.Store {
	return taskgroupstore.New(h.DB)
}

func (h *Handler) lists() *taskliststore.Store {
	return taskliststore.New(h.DB)
}

// projectID pulls the shared "/projects/{id}" parameter.
func projectID(r *http.Request) (primitive.ObjectID, error) {
	return inputval.ParseID(chi.URLParam(r, "id"))
}

// groupManager resolves the child-level lifecycle manager for the
// project's group children. A project with no root has no children, so
// resolution fails with not-found.
func (h *Handler) groupManager(r *http.Request) (*lifecycle.Manager, error) {
	pid, err := projectID(r)
	if err != nil {
		return nil, err
	}
	st := h.groups()
	root, err := st.GetByProject(r.Context(), pid)
	if err != nil {
		return nil, err
	}
	return st.Groups(root.ID).Lifecycle(), nil
}

func (h *Handler) labelManager(r *http.Request) (*lifecycle.Manager, error) {
	pid, err := projectID(r)
	if err != nil {
		return nil, err
	}
	st := h.groups()
	root, err := st.GetByProject(r.Context(), pid)
	if err != nil {
		return nil, err
	}
	return st.Labels(root.ID).Lifecycle(), nil
}

func (h *Handler) taskManager(r *http.Request) (*lifecycle.Manager, error) {
	pid, err := projectID(r)
	if err != nil {
		return nil, err
	}
	st := h.lists()
	root, err := st.GetByProject(r.Context(), pid)
	if err != nil {
		return nil, err
	}
	return st.Tasks(root.ID).Lifecycle(), nil
}
