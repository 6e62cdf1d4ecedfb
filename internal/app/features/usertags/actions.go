// internal/app/features/usertags/actions.go
package usertags

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	usertagstore "github.com/taskhub/taskhub/internal/app/store/usertags"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

type upsertInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate inserts a new user tag.
//
// Route: POST /user-tags
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "create user tag", err)
		return
	}

	p, err := h.store().Create(r.Context(), name, inputval.CleanText(in.Description))
	if errors.Is(err, usertagstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "user tag name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create user tag", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "user tag created", p)
}

// HandleList returns non-deleted user tags, newest first. ?active=true
// narrows to active records.
//
// Route: GET /user-tags
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	onlyActive := query.Get(r, "active") == "true"
	list, err := h.store().List(r.Context(), onlyActive)
	if err != nil {
		respond.Internal(w, h.Log, "list user tags", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user tags fetched", list)
}

// HandleGet returns one user tag regardless of lifecycle state.
//
// Route: GET /user-tags/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "get user tag", err)
		return
	}
	p, err := h.store().GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.Log, "get user tag", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user tag fetched", p)
}

// HandleUpdate mutates name/description. Soft-deleted records reject the
// update with a conflict.
//
// Route: PUT /user-tags/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "update user tag", err)
		return
	}

	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "update user tag", err)
		return
	}
	err = st.UpdateInfo(r.Context(), id, inputval.CleanText(in.Name), inputval.CleanText(in.Description))
	if errors.Is(err, usertagstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "user tag name already in use", err)
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, "update user tag", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user tag updated", true)
}
