// internal/app/features/tasks/groups.go
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

type groupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreateGroup appends a group under the project's root, creating
// the root on first use.
//
// Route: POST /projects/{id}/groups
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "create group", err)
		return
	}
	var in groupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "create group", err)
		return
	}

	item, err := h.groups().AddGroup(r.Context(), pid, name, inputval.CleanText(in.Description))
	if errors.Is(err, taskgroupstore.ErrDuplicateGroupName) {
		respond.Fail(w, http.StatusConflict, "group name already in use in this project", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create group", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "group created", item)
}

// HandleListGroups returns the project's non-deleted groups.
// ?include_inactive=true widens the filter.
//
// Route: GET /projects/{id}/groups
func (h *Handler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "list groups", err)
		return
	}
	view, err := taskgroupviews.GetByProject(r.Context(), h.DB, pid, taskgroupviews.Filter{
		IncludeInactive: query.Get(r, "include_inactive") == "true",
	})
	if err != nil {
		respond.Internal(w, h.Log, "list groups", err)
		return
	}
	respond.JSON(w, http.StatusOK, "groups fetched", view.Groups)
}

// HandleGetGroup returns one group child.
//
// Route: GET /projects/{id}/groups/{childID}
func (h *Handler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "get group", err)
		return
	}
	childID, err := inputval.ParseID(chi.URLParam(r, "childID"))
	if err != nil {
		shared.WriteError(w, h.Log, "get group", err)
		return
	}
	view, err := taskgroupviews.GetGroup(r.Context(), h.DB, pid, childID)
	if err != nil {
		shared.WriteError(w, h.Log, "get group", err)
		return
	}
	respond.JSON(w, http.StatusOK, "group fetched", view)
}

// HandleUpdateGroup mutates a group child's name/description.
//
// Route: PUT /projects/{id}/groups/{childID}
func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		shared.WriteError(w, h.Log, "update group", err)
		return
	}
	childID, err := inputval.ParseID(chi.URLParam(r, "childID"))
	if err != nil {
		shared.WriteError(w, h.Log, "update group", err)
		return
	}
	var in groupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	st := h.groups()
	root, err := st.GetByProject(r.Context(), pid)
	if err != nil {
		shared.WriteError(w, h.Log, "update group", err)
		return
	}
	if err := st.Groups(root.ID).Lifecycle().CheckUpdatable(r.Context(), childID); err != nil {
		shared.WriteError(w, h.Log, "update group", err)
		return
	}
	if err := st.UpdateGroupInfo(r.Context(), root.ID, childID, inputval.CleanText(in.Name), inputval.CleanText(in.Description)); err != nil {
		shared.WriteError(w, h.Log, "update group", err)
		return
	}
	respond.JSON(w, http.StatusOK, "group updated", true)
}
