// internal/app/features/tasks/labels.go
package tasks

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/store/queries/taskgroupviews"
	taskgroupstore "github.com/taskhub/taskhub/internal/app/store/taskgroups"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

type labelInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HandleCreateLabel appends a label under the project's root.
//
// Route: POST /projects/{id}/labels
func (h *Handler) HandleCreateLabel(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "create label", err)
		return
	}
	var in labelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "create label", err)
		return
	}

	item, err := h.groups().AddLabel(r.Context(), pid, name, inputval.CleanText(in.Color))
	if errors.Is(err, taskgroupstore.ErrDuplicateLabelName) {
		respond.Fail(w, http.StatusConflict, "label name already in use in this project", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create label", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "label created", item)
}

// HandleListLabels returns the project's non-deleted labels.
// ?include_inactive=true widens the filter.
//
// Route: GET /projects/{id}/labels
func (h *Handler) HandleListLabels(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "list labels", err)
		return
	}
	view, err := taskgroupviews.GetByProject(r.Context(), h.DB, pid, taskgroupviews.Filter{
		IncludeInactive: query.Get(r, "include_inactive") == "true",
	})
	if err != nil {
		respond.Internal(w, h.Log, "list labels", err)
		return
	}
	respond.JSON(w, http.StatusOK, "labels fetched", view.Labels)
}

// HandleUpdateLabel mutates a label child's name/color.
//
// Route: PUT /projects/{id}/labels/{childID}
func (h *Handler) HandleUpdateLabel(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "update label", err)
		return
	}
	childID, err := inputval.ParseID(chi.URLParam(r, "childID"))
	if err != nil {
		shared.WriteError(w, h.Log, "update label", err)
		return
	}
	var in labelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	st := h.groups()
	root, err := st.GetByProject(r.Context(), pid)
	if err != nil {
		shared.WriteError(w, h.Log, "update label", err)
		return
	}
	if err := st.Labels(root.ID).Lifecycle().CheckUpdatable(r.Context(), childID); err != nil {
		shared.WriteError(w, h.Log, "update label", err)
		return
	}
	if err := st.UpdateLabelInfo(r.Context(), root.ID, childID, inputval.CleanText(in.Name), inputval.CleanText(in.Color)); err != nil {
		shared.WriteError(w, h.Log, "update label", err)
		return
	}
	respond.JSON(w, http.StatusOK, "label updated", true)
}
