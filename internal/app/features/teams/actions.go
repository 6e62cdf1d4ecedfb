// internal/app/features/teams/actions.go
package teams

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/store/queries/teamviews"
	teamstore "github.com/taskhub/taskhub/internal/app/store/teams"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

type upsertInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	LeaderID    string   `json:"leader_id"`
	ManagerID   string   `json:"manager_id"`
	EmployeeIDs []string `json:"employee_ids"`
}

// HandleCreate inserts a new team. The session actor is recorded as the
// creator.
//
// Route: POST /teams
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "create team", err)
		return
	}
	leaderID, err := inputval.ParseOptionalID(in.LeaderID)
	if err != nil {
		shared.WriteError(w, h.Log, "create team", err)
		return
	}
	managerID, err := inputval.ParseOptionalID(in.ManagerID)
	if err != nil {
		shared.WriteError(w, h.Log, "create team", err)
		return
	}
	employeeIDs, err := inputval.ParseIDs(in.EmployeeIDs)
	if err != nil {
		shared.WriteError(w, h.Log, "create team", err)
		return
	}

	team, err := h.store().Create(r.Context(), teamstore.NewTeam{
		Name:        name,
		Description: inputval.CleanText(in.Description),
		LeaderID:    leaderID,
		ManagerID:   managerID,
		CreatedBy:   auth.ActorID(r),
		EmployeeIDs: employeeIDs,
	})
	if errors.Is(err, teamstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "team name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create team", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "team created", team)
}

// HandleList returns composed teams with leader, manager, creator, and
// employees joined in. ?active=true narrows to active records.
//
// Route: GET /teams
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	onlyActive := query.Get(r, "active") == "true"
	list, err := teamviews.ListTeams(r.Context(), h.DB, onlyActive)
	if err != nil {
		respond.Internal(w, h.Log, "list teams", err)
		return
	}
	respond.JSON(w, http.StatusOK, "teams fetched", list)
}

// HandleGet returns one composed team.
//
// Route: GET /teams/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "get team", err)
		return
	}
	view, err := teamviews.GetTeam(r.Context(), h.DB, id)
	if err != nil {
		shared.WriteError(w, h.Log, "get team", err)
		return
	}
	respond.JSON(w, http.StatusOK, "team fetched", view)
}

// HandleUpdate mutates name/description and the leader/manager
// references.
//
// Route: PUT /teams/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "update team", err)
		return
	}

	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	leaderID, err := inputval.ParseOptionalID(in.LeaderID)
	if err != nil {
		shared.WriteError(w, h.Log, "update team", err)
		return
	}
	managerID, err := inputval.ParseOptionalID(in.ManagerID)
	if err != nil {
		shared.WriteError(w, h.Log, "update team", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "update team", err)
		return
	}
	err = st.UpdateInfo(r.Context(), id, inputval.CleanText(in.Name), inputval.CleanText(in.Description), leaderID, managerID)
	if errors.Is(err, teamstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "team name already in use", err)
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, "update team", err)
		return
	}
	respond.JSON(w, http.StatusOK, "team updated", true)
}

// HandleAddEmployee adds a member reference; adding an existing member
// is a no-op.
//
// Route: POST /teams/{id}/employees
func (h *Handler) HandleAddEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "add team employee", err)
		return
	}
	var in struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	userID, err := inputval.ParseID(in.UserID)
	if err != nil {
		shared.WriteError(w, h.Log, "add team employee", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "add team employee", err)
		return
	}
	if err := st.AddEmployee(r.Context(), id, userID); err != nil {
		shared.WriteError(w, h.Log, "add team employee", err)
		return
	}
	respond.JSON(w, http.StatusOK, "employee added", true)
}

// HandleRemoveEmployee drops a member reference.
//
// Route: DELETE /teams/{id}/employees/{userID}
func (h *Handler) HandleRemoveEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "remove team employee", err)
		return
	}
	userID, err := inputval.ParseID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, h.Log, "remove team employee", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "remove team employee", err)
		return
	}
	if err := st.RemoveEmployee(r.Context(), id, userID); err != nil {
		shared.WriteError(w, h.Log, "remove team employee", err)
		return
	}
	respond.JSON(w, http.StatusOK, "employee removed", true)
}
