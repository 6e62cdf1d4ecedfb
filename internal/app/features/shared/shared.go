// internal/app/features/shared/shared.go
//
// Package shared holds the handler plumbing every feature repeats: the
// sentinel-to-envelope error mapping and the four lifecycle endpoints,
// which behave identically for every entity type.
package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

// WriteError maps store/lifecycle failures onto the envelope contract:
// validation 422, missing record 404, guard conflict 409, anything else
// a logged 500.
func WriteError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid input", err)
	case errors.Is(err, lifecycle.ErrNotFound):
		respond.Fail(w, http.StatusNotFound, "record not found", err)
	case errors.Is(err, lifecycle.ErrConflict):
		respond.Fail(w, http.StatusConflict, "operation not allowed in the current state", err)
	default:
		respond.Internal(w, log, op, err)
	}
}

// ManagerFunc resolves the lifecycle manager for the record named in the
// request path. Features whose records live in their own collection
// return a collection-level manager; embedded children resolve their
// parent root first.
type ManagerFunc func(r *http.Request) (*lifecycle.Manager, error)

// ToggleStatus flips is_active and reports the resulting state.
func ToggleStatus(w http.ResponseWriter, r *http.Request, log *zap.Logger, noun, idParam string, mf ManagerFunc) {
	id, err := inputval.ParseID(chi.URLParam(r, idParam))
	if err != nil {
		WriteError(w, log, "toggle "+noun, err)
		return
	}
	mgr, err := mf(r)
	if err != nil {
		WriteError(w, log, "toggle "+noun, err)
		return
	}
	state, err := mgr.ToggleStatus(r.Context(), id)
	if err != nil {
		WriteError(w, log, "toggle "+noun, err)
		return
	}
	respond.JSON(w, http.StatusOK, fmt.Sprintf("%s is now %s", noun, state), true)
}

// SoftDelete stamps the deletion fields, attributing the acting user when
// a session actor is present.
func SoftDelete(w http.ResponseWriter, r *http.Request, log *zap.Logger, noun, idParam string, mf ManagerFunc) {
	id, err := inputval.ParseID(chi.URLParam(r, idParam))
	if err != nil {
		WriteError(w, log, "soft-delete "+noun, err)
		return
	}
	mgr, err := mf(r)
	if err != nil {
		WriteError(w, log, "soft-delete "+noun, err)
		return
	}
	if err := mgr.SoftDelete(r.Context(), id, auth.ActorID(r)); err != nil {
		WriteError(w, log, "soft-delete "+noun, err)
		return
	}
	respond.JSON(w, http.StatusOK, noun+" deleted", true)
}

// Restore clears the deletion stamp; is_active comes back as it was.
func Restore(w http.ResponseWriter, r *http.Request, log *zap.Logger, noun, idParam string, mf ManagerFunc) {
	id, err := inputval.ParseID(chi.URLParam(r, idParam))
	if err != nil {
		WriteError(w, log, "restore "+noun, err)
		return
	}
	mgr, err := mf(r)
	if err != nil {
		WriteError(w, log, "restore "+noun, err)
		return
	}
	if err := mgr.Restore(r.Context(), id); err != nil {
		WriteError(w, log, "restore "+noun, err)
		return
	}
	respond.JSON(w, http.StatusOK, noun+" restored", true)
}

// Purge permanently removes a record that was soft-deleted first.
func Purge(w http.ResponseWriter, r *http.Request, log *zap.Logger, noun, idParam string, mf ManagerFunc) {
	id, err := inputval.ParseID(chi.URLParam(r, idParam))
	if err != nil {
		WriteError(w, log, "purge "+noun, err)
		return
	}
	mgr, err := mf(r)
	if err != nil {
		WriteError(w, log, "purge "+noun, err)
		return
	}
	if err := mgr.Purge(r.Context(), id); err != nil {
		WriteError(w, log, "purge "+noun, err)
		return
	}
	respond.JSON(w, http.StatusOK, noun+" permanently deleted", true)
}

// MountLifecycle attaches the four lifecycle endpoints under /{id}.
func MountLifecycle(r chi.Router, log *zap.Logger, noun string, mf ManagerFunc) {
	r.Patch("/{id}/status", func(w http.ResponseWriter, req *http.Request) {
		ToggleStatus(w, req, log, noun, "id", mf)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
		SoftDelete(w, req, log, noun, "id", mf)
	})
	r.Post("/{id}/restore", func(w http.ResponseWriter, req *http.Request) {
		Restore(w, req, log, noun, "id", mf)
	})
	r.Delete("/{id}/purge", func(w http.ResponseWriter, req *http.Request) {
		Purge(w, req, log, noun, "id", mf)
	})
}
