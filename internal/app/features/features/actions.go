// internal/app/features/features/actions.go
package features

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	featurestore "github.com/taskhub/taskhub/internal/app/store/features"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

type upsertInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate inserts a new feature.
//
// Route: POST /features
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "create feature", err)
		return
	}

	p, err := h.store().Create(r.Context(), name, inputval.CleanText(in.Description))
	if errors.Is(err, featurestore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "feature name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create feature", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "feature created", p)
}

// HandleList returns non-deleted features, newest first. ?active=true
// narrows to active records.
//
// Route: GET /features
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	onlyActive := query.Get(r, "active") == "true"
	list, err := h.store().List(r.Context(), onlyActive)
	if err != nil {
		respond.Internal(w, h.Log, "list features", err)
		return
	}
	respond.JSON(w, http.StatusOK, "features fetched", list)
}

// HandleGet returns one feature regardless of lifecycle state.
//
// Route: GET /features/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "get feature", err)
		return
	}
	p, err := h.store().GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.Log, "get feature", err)
		return
	}
	respond.JSON(w, http.StatusOK, "feature fetched", p)
}

// HandleUpdate mutates name/description. Soft-deleted records reject the
// update with a conflict.
//
// Route: PUT /features/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "update feature", err)
		return
	}

	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "update feature", err)
		return
	}
	err = st.UpdateInfo(r.Context(), id, inputval.CleanText(in.Name), inputval.CleanText(in.Description))
	if errors.Is(err, featurestore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "feature name already in use", err)
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, "update feature", err)
		return
	}
	respond.JSON(w, http.StatusOK, "feature updated", true)
}
