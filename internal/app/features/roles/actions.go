// internal/app/features/roles/actions.go
package roles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/store/queries/roleviews"
	rolestore "github.com/taskhub/taskhub/internal/app/store/roles"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/respond"
	"github.com/taskhub/taskhub/internal/domain/models"
)

type grantInput struct {
	FeatureID     string   `json:"feature_id"`
	PermissionIDs []string `json:"permission_id"`
}

type createInput struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	AccessControl []grantInput `json:"access_control"`
}

func parseGrants(in []grantInput) ([]models.AccessControl, error) {
	out := make([]models.AccessControl, 0, len(in))
	for _, g := range in {
		featureID, err := inputval.ParseID(g.FeatureID)
		if err != nil {
			return nil, err
		}
		permissionIDs, err := inputval.ParseIDs(g.PermissionIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, models.AccessControl{FeatureID: featureID, PermissionIDs: permissionIDs})
	}
	return out, nil
}

// HandleCreate inserts a new role with its initial grants.
//
// Route: POST /roles
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "create role", err)
		return
	}
	grants, err := parseGrants(in.AccessControl)
	if err != nil {
		shared.WriteError(w, h.Log, "create role", err)
		return
	}

	role, err := h.store().Create(r.Context(), name, inputval.CleanText(in.Description), grants)
	if errors.Is(err, rolestore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "role name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create role", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "role created", role)
}

// HandleList returns composed roles with their features and permissions
// joined in. ?active=true narrows to active records.
//
// Route: GET /roles
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	onlyActive := query.Get(r, "active") == "true"
	list, err := roleviews.ListRoles(r.Context(), h.DB, onlyActive)
	if err != nil {
		respond.Internal(w, h.Log, "list roles", err)
		return
	}
	respond.JSON(w, http.StatusOK, "roles fetched", list)
}

// HandleGet returns one composed role.
//
// Route: GET /roles/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "get role", err)
		return
	}
	view, err := roleviews.GetRole(r.Context(), h.DB, id)
	if err != nil {
		shared.WriteError(w, h.Log, "get role", err)
		return
	}
	respond.JSON(w, http.StatusOK, "role fetched", view)
}

// HandleUpdate mutates name/description.
//
// Route: PUT /roles/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "update role", err)
		return
	}

	var in createInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "update role", err)
		return
	}
	err = st.UpdateInfo(r.Context(), id, inputval.CleanText(in.Name), inputval.CleanText(in.Description))
	if errors.Is(err, rolestore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "role name already in use", err)
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, "update role", err)
		return
	}
	respond.JSON(w, http.StatusOK, "role updated", true)
}

// HandleSetAccess replaces the role's grant list wholesale.
//
// Route: PUT /roles/{id}/access
func (h *Handler) HandleSetAccess(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "set role access", err)
		return
	}

	var in struct {
		AccessControl []grantInput `json:"access_control"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	grants, err := parseGrants(in.AccessControl)
	if err != nil {
		shared.WriteError(w, h.Log, "set role access", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "set role access", err)
		return
	}
	if err := st.SetAccessControl(r.Context(), id, grants); err != nil {
		shared.WriteError(w, h.Log, "set role access", err)
		return
	}
	respond.JSON(w, http.StatusOK, "role access updated", true)
}
