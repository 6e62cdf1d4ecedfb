// internal/app/features/projects/actions.go
package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	projectstore "github.com/taskhub/taskhub/internal/app/store/projects"
	"github.com/taskhub/taskhub/internal/app/store/queries/projectviews"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

type upsertInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TeamID      string `json:"team_id"`
	OwnerID     string `json:"owner_id"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
}

func (in upsertInput) parse() (projectstore.NewProject, error) {
	name, err := inputval.RequireName(in.Name)
	if err != nil {
		return projectstore.NewProject{}, err
	}
	teamID, err := inputval.ParseOptionalID(in.TeamID)
	if err != nil {
		return projectstore.NewProject{}, err
	}
	ownerID, err := inputval.ParseOptionalID(in.OwnerID)
	if err != nil {
		return projectstore.NewProject{}, err
	}
	start, err := inputval.ParseDate(in.StartDate)
	if err != nil {
		return projectstore.NewProject{}, err
	}
	end, err := inputval.ParseDate(in.EndDate)
	if err != nil {
		return projectstore.NewProject{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return projectstore.NewProject{}, fmt.Errorf("%w: end date before start date", lifecycle.ErrValidation)
	}
	return projectstore.NewProject{
		Name:        name,
		Description: inputval.CleanText(in.Description),
		TeamID:      teamID,
		OwnerID:     ownerID,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// HandleCreate inserts a new project.
//
// Route: POST /projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	np, err := in.parse()
	if err != nil {
		shared.WriteError(w, h.Log, "create project", err)
		return
	}

	p, err := h.store().Create(r.Context(), np)
	if errors.Is(err, projectstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "project name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create project", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "project created", p)
}

// HandleList returns composed projects with team and owner joined in.
// ?active=true narrows to active records.
//
// Route: GET /projects
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	onlyActive := query.Get(r, "active") == "true"
	list, err := projectviews.ListProjects(r.Context(), h.DB, onlyActive)
	if err != nil {
		respond.Internal(w, h.Log, "list projects", err)
		return
	}
	respond.JSON(w, http.StatusOK, "projects fetched", list)
}

// HandleGet returns one composed project.
//
// Route: GET /projects/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "get project", err)
		return
	}
	view, err := projectviews.GetProject(r.Context(), h.DB, id)
	if err != nil {
		shared.WriteError(w, h.Log, "get project", err)
		return
	}
	respond.JSON(w, http.StatusOK, "project fetched", view)
}

// HandleUpdate mutates project fields.
//
// Route: PUT /projects/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "update project", err)
		return
	}

	var in upsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	np, err := in.parse()
	if err != nil {
		shared.WriteError(w, h.Log, "update project", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "update project", err)
		return
	}
	err = st.UpdateInfo(r.Context(), id, np.Name, np.Description, np.TeamID, np.OwnerID, np.StartDate, np.EndDate)
	if errors.Is(err, projectstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "project name already in use", err)
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, "update project", err)
		return
	}
	respond.JSON(w, http.StatusOK, "project updated", true)
}
