// internal/app/features/tasks/taskactions.go
package tasks

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/store/queries/taskviews"
	taskliststore "github.com/taskhub/taskhub/internal/app/store/tasklists"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

type taskInput struct {
	Name        string   `json:"name"`
	Detail      string   `json:"detail"`
	GroupID     string   `json:"group_id"`
	LabelIDs    []string `json:"label_ids"`
	AssigneeIDs []string `json:"assignee_ids"`
	StartDate   string   `json:"start_date"` // YYYY-MM-DD
	DueDate     string   `json:"due_date"`   // YYYY-MM-DD
}

func (in taskInput) parse(requireName bool) (taskliststore.NewTask, error) {
	var out taskliststore.NewTask
	var err error

	if requireName {
		out.Name, err = inputval.RequireName(in.Name)
	} else {
		out.Name = inputval.CleanText(in.Name)
	}
	if err != nil {
		return taskliststore.NewTask{}, err
	}
	out.Detail = inputval.CleanText(in.Detail)
	if out.GroupID, err = inputval.ParseOptionalID(in.GroupID); err != nil {
		return taskliststore.NewTask{}, err
	}
	if out.LabelIDs, err = inputval.ParseIDs(in.LabelIDs); err != nil {
		return taskliststore.NewTask{}, err
	}
	if out.AssigneeIDs, err = inputval.ParseIDs(in.AssigneeIDs); err != nil {
		return taskliststore.NewTask{}, err
	}
	if out.StartDate, err = inputval.ParseDate(in.StartDate); err != nil {
		return taskliststore.NewTask{}, err
	}
	if out.DueDate, err = inputval.ParseDate(in.DueDate); err != nil {
		return taskliststore.NewTask{}, err
	}
	return out, nil
}

// HandleCreateTask appends a task under the project's root, creating the
// root on first use.
//
// Route: POST /projects/{id}/tasks
func (h *Handler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "create task", err)
		return
	}
	var in taskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	nt, err := in.parse(true)
	if err != nil {
		shared.WriteError(w, h.Log, "create task", err)
		return
	}

	item, err := h.lists().AddTask(r.Context(), pid, nt)
	if errors.Is(err, taskliststore.ErrDuplicateTaskName) {
		respond.Fail(w, http.StatusConflict, "task name already in use in this project", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create task", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "task created", item)
}

// HandleListTasks returns the project's composed tasks with group,
// labels, and assignees resolved. ?include_inactive=true widens the
// filter to switched-off tasks.
//
// Route: GET /projects/{id}/tasks
func (h *Handler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "list tasks", err)
		return
	}
	list, err := taskviews.ListByProject(r.Context(), h.DB, pid,
		query.Get(r, "include_inactive") == "true")
	if err != nil {
		respond.Internal(w, h.Log, "list tasks", err)
		return
	}
	respond.JSON(w, http.StatusOK, "tasks fetched", list)
}

// HandleGetTask returns one composed task.
//
// Route: GET /projects/{id}/tasks/{childID}
func (h *Handler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "get task", err)
		return
	}
	childID, err := inputval.ParseID(chi.URLParam(r, "childID"))
	if err != nil {
		shared.WriteError(w, h.Log, "get task", err)
		return
	}
	view, err := taskviews.GetTask(r.Context(), h.DB, pid, childID)
	if err != nil {
		shared.WriteError(w, h.Log, "get task", err)
		return
	}
	respond.JSON(w, http.StatusOK, "task fetched", view)
}

// HandleUpdateTask mutates a task child's fields.
//
// Route: PUT /projects/{id}/tasks/{childID}
func (h *Handler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "update task", err)
		return
	}
	childID, err := inputval.ParseID(chi.URLParam(r, "childID"))
	if err != nil {
		shared.WriteError(w, h.Log, "update task", err)
		return
	}
	var in taskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	nt, err := in.parse(false)
	if err != nil {
		shared.WriteError(w, h.Log, "update task", err)
		return
	}

	st := h.lists()
	root, err := st.GetByProject(r.Context(), pid)
	if err != nil {
		shared.WriteError(w, h.Log, "update task", err)
		return
	}
	if err := st.Tasks(root.ID).Lifecycle().CheckUpdatable(r.Context(), childID); err != nil {
		shared.WriteError(w, h.Log, "update task", err)
		return
	}
	if err := st.UpdateTaskInfo(r.Context(), root.ID, childID, nt); err != nil {
		shared.WriteError(w, h.Log, "update task", err)
		return
	}
	respond.JSON(w, http.StatusOK, "task updated", true)
}
