// internal/app/features/users/actions.go
package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	"github.com/taskhub/taskhub/internal/app/store/queries/userviews"
	userstore "github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/app/system/credentials"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/keygen"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

type createInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Secret       string `json:"secret"`
	RoleID       string `json:"role_id"`
	DepartmentID string `json:"department_id"`
	TagID        string `json:"tag_id"`
	BirthDate    string `json:"birth_date"` // YYYY-MM-DD
}

const minSecretLen = 8

// HandleCreate registers a new user. The secret is bcrypt-hashed before
// it touches the store.
//
// Route: POST /users
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "create user", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid email address", err)
		return
	}
	if len(in.Secret) < minSecretLen {
		respond.Fail(w, http.StatusUnprocessableEntity, "secret must be at least 8 characters", "secret too short")
		return
	}

	roleID, err := inputval.ParseOptionalID(in.RoleID)
	if err != nil {
		shared.WriteError(w, h.Log, "create user", err)
		return
	}
	departmentID, err := inputval.ParseOptionalID(in.DepartmentID)
	if err != nil {
		shared.WriteError(w, h.Log, "create user", err)
		return
	}
	tagID, err := inputval.ParseOptionalID(in.TagID)
	if err != nil {
		shared.WriteError(w, h.Log, "create user", err)
		return
	}
	birthDate, err := inputval.ParseDate(in.BirthDate)
	if err != nil {
		shared.WriteError(w, h.Log, "create user", err)
		return
	}

	hash, err := credentials.HashSecret(in.Secret)
	if err != nil {
		respond.Internal(w, h.Log, "create user", err)
		return
	}

	u, err := h.store().Create(r.Context(), userstore.NewUser{
		Name:         name,
		Email:        email,
		SecretHash:   hash,
		RoleID:       roleID,
		DepartmentID: departmentID,
		TagID:        tagID,
		BirthDate:    birthDate,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Fail(w, http.StatusConflict, "email already in use", err)
		return
	}
	if errors.Is(err, userstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "user name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "create user", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "user created", u)
}

// HandleList returns composed users with role, department, and tag
// joined in. ?active=true narrows to active records.
//
// Route: GET /users
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	onlyActive := query.Get(r, "active") == "true"
	list, err := userviews.ListUsers(r.Context(), h.DB, onlyActive)
	if err != nil {
		respond.Internal(w, h.Log, "list users", err)
		return
	}
	respond.JSON(w, http.StatusOK, "users fetched", list)
}

// HandleGet returns one composed user.
//
// Route: GET /users/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "get user", err)
		return
	}
	view, err := userviews.GetUser(r.Context(), h.DB, id)
	if err != nil {
		shared.WriteError(w, h.Log, "get user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user fetched", view)
}

// HandleUpdate mutates profile fields. Email and secret are not editable
// through this endpoint.
//
// Route: PUT /users/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "update user", err)
		return
	}

	var in createInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	roleID, err := inputval.ParseOptionalID(in.RoleID)
	if err != nil {
		shared.WriteError(w, h.Log, "update user", err)
		return
	}
	departmentID, err := inputval.ParseOptionalID(in.DepartmentID)
	if err != nil {
		shared.WriteError(w, h.Log, "update user", err)
		return
	}
	tagID, err := inputval.ParseOptionalID(in.TagID)
	if err != nil {
		shared.WriteError(w, h.Log, "update user", err)
		return
	}
	birthDate, err := inputval.ParseDate(in.BirthDate)
	if err != nil {
		shared.WriteError(w, h.Log, "update user", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "update user", err)
		return
	}
	err = st.UpdateProfile(r.Context(), id, inputval.CleanText(in.Name), roleID, departmentID, tagID, birthDate)
	if errors.Is(err, userstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "user name already in use", err)
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, "update user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user updated", true)
}

// HandleSetAvatar stores a fresh avatar key for the user. The media
// feature owns the actual bytes; this endpoint just mints and records
// the key so the upload can be addressed.
//
// Route: PUT /users/{id}/avatar
func (h *Handler) HandleSetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "set avatar", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "set avatar", err)
		return
	}

	key, err := keygen.New(id.Hex())
	if err != nil {
		respond.Internal(w, h.Log, "set avatar", err)
		return
	}
	if err := st.SetAvatar(r.Context(), id, key); err != nil {
		shared.WriteError(w, h.Log, "set avatar", err)
		return
	}
	respond.JSON(w, http.StatusOK, "avatar key assigned", map[string]string{"avatar_key": key})
}
