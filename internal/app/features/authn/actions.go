// internal/app/features/authn/actions.go
package authn

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	userstore "github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/credentials"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

// HandleLogin verifies the email/secret pair against active users and
// starts a session. Inactive and soft-deleted users cannot sign in.
//
// Route: POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email  string `json:"email"`
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	u, err := h.users().GetByEmail(r.Context(), in.Email)
	if errors.Is(err, lifecycle.ErrNotFound) {
		// Same response as a wrong secret; do not reveal which.
		respond.Fail(w, http.StatusUnauthorized, "invalid credentials", "email or secret incorrect")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "login", err)
		return
	}
	if !credentials.VerifySecret(u.SecretHash, in.Secret) {
		respond.Fail(w, http.StatusUnauthorized, "invalid credentials", "email or secret incorrect")
		return
	}

	err = h.SM.SignIn(w, r, auth.Actor{ID: u.ID.Hex(), Name: u.Name, Email: u.Email})
	if err != nil {
		respond.Internal(w, h.Log, "login", err)
		return
	}
	respond.JSON(w, http.StatusOK, "signed in", map[string]string{
		"id": u.ID.Hex(), "name": u.Name, "email": u.Email,
	})
}

// HandleLogout expires the session cookie. Always succeeds.
//
// Route: POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SM.SignOut(w, r); err != nil {
		respond.Internal(w, h.Log, "logout", err)
		return
	}
	respond.JSON(w, http.StatusOK, "signed out", true)
}

// HandleMe reports the signed-in actor, or 401 for anonymous callers.
//
// Route: GET /auth/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	a, ok := auth.CurrentActor(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required", "no signed-in user")
		return
	}
	respond.JSON(w, http.StatusOK, "session fetched", map[string]string{
		"id": a.ID, "name": a.Name, "email": a.Email,
	})
}

// HandleCreateInvite seals an email address into an opaque invite code a
// prospective user can redeem through /auth/register.
//
// Route: POST /auth/invites
func (h *Handler) HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid email address", err)
		return
	}

	code, err := h.Box.Encrypt(email)
	if err != nil {
		respond.Internal(w, h.Log, "create invite", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "invite created", map[string]string{"invite": code})
}

// HandleRegister redeems an invite code and creates the account for the
// email sealed inside it.
//
// Route: POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Invite string `json:"invite"`
		Name   string `json:"name"`
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}

	email, err := h.Box.Decrypt(in.Invite)
	if err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid invite code", err)
		return
	}
	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "register", err)
		return
	}
	if len(in.Secret) < 8 {
		respond.Fail(w, http.StatusUnprocessableEntity, "secret must be at least 8 characters", "secret too short")
		return
	}

	hash, err := credentials.HashSecret(in.Secret)
	if err != nil {
		respond.Internal(w, h.Log, "register", err)
		return
	}
	u, err := h.users().Create(r.Context(), userstore.NewUser{
		Name:       name,
		Email:      email,
		SecretHash: hash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Fail(w, http.StatusConflict, "email already in use", err)
		return
	}
	if errors.Is(err, userstore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "register", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "account created", u)
}
