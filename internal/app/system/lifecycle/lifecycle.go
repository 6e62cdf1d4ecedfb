// internal/app/system/lifecycle/lifecycle.go
//
// Package lifecycle implements the soft-delete state machine every entity
// (and every embedded child item) obeys:
//
//	ACTIVE ⇄ INACTIVE        toggle-status
//	ACTIVE/INACTIVE → SOFT_DELETED   soft-delete
//	SOFT_DELETED → ACTIVE/INACTIVE   restore (is_active is untouched)
//	SOFT_DELETED → PURGED    permanent delete (requires prior soft-delete)
//
// Every guard is a pure function over a State snapshot so the transition
// table can be tested without a database. The Manager pairs the guards
// with a store Adapter and performs the actual field mutations.
//
// Concurrency: operations are read-then-write without optimistic locking;
// two concurrent toggles can both observe the pre-toggle state and write
// the same value. Last write wins. This mirrors the store's weak
// consistency policy and is deliberate.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/status"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound means no record exists under the given key.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means the record exists but is in the wrong lifecycle
	// state for the requested transition, or a uniqueness constraint was
	// violated.
	ErrConflict = errors.New("lifecycle conflict")
	// ErrValidation means the input could not be interpreted (typically a
	// malformed identifier).
	ErrValidation = errors.New("invalid input")
)

// State is the lifecycle-relevant snapshot of a record or embedded child.
type State struct {
	IsActive  bool
	DeletedAt *time.Time
}

// Status reports the state machine position for a snapshot.
func (s State) Status() string {
	if s.DeletedAt != nil {
		return status.SoftDeleted
	}
	if s.IsActive {
		return status.Active
	}
	return status.Inactive
}

// GuardUpdate gates name/description updates: soft-deleted records reject
// normal mutation.
func GuardUpdate(s State) error {
	if s.DeletedAt != nil {
		return ErrConflict
	}
	return nil
}

// GuardToggleStatus gates the is_active flip. Same precondition as update.
func GuardToggleStatus(s State) error {
	if s.DeletedAt != nil {
		return ErrConflict
	}
	return nil
}

// GuardSoftDelete rejects double deletion.
func GuardSoftDelete(s State) error {
	if s.DeletedAt != nil {
		return ErrConflict
	}
	return nil
}

// GuardRestore requires the record to be soft-deleted.
//
// The original system gated restore and purge on a status-code comparison
// that was always true; the plain soft-deleted precondition below is the
// corrected behavior.
func GuardRestore(s State) error {
	if s.DeletedAt == nil {
		return ErrConflict
	}
	return nil
}

// GuardPurge requires prior soft-delete; purging a live record is a
// conflict and must not remove it.
func GuardPurge(s State) error {
	if s.DeletedAt == nil {
		return ErrConflict
	}
	return nil
}

// Adapter is the per-store capability surface the Manager drives. Field
// paths (nested deleted_at, child array positions) are the adapter's
// business; the Manager only reasons about State.
type Adapter interface {
	// FindState returns the lifecycle snapshot for id, or ErrNotFound.
	FindState(ctx context.Context, id primitive.ObjectID) (State, error)
	// SetFields applies a flat field patch and stamps updated_at.
	SetFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) error
	// Remove permanently deletes the record. ErrNotFound if absent.
	Remove(ctx context.Context, id primitive.ObjectID) error
}

// Manager enforces the guard table against one store.
type Manager struct {
	store Adapter
}

// NewManager wraps a store adapter.
func NewManager(store Adapter) *Manager {
	return &Manager{store: store}
}

// ToggleStatus flips is_active and returns the resulting status string
// ("active" or "inactive") for inclusion in the response message.
func (m *Manager) ToggleStatus(ctx context.Context, id primitive.ObjectID) (string, error) {
	st, err := m.store.FindState(ctx, id)
	if err != nil {
		return "", err
	}
	if err := GuardToggleStatus(st); err != nil {
		return "", err
	}
	next := !st.IsActive
	if err := m.store.SetFields(ctx, id, map[string]any{"is_active": next}); err != nil {
		return "", err
	}
	if next {
		return status.Active, nil
	}
	return status.Inactive, nil
}

// SoftDelete stamps deleted_at.date (and the acting user when known).
func (m *Manager) SoftDelete(ctx context.Context, id primitive.ObjectID, actor *primitive.ObjectID) error {
	st, err := m.store.FindState(ctx, id)
	if err != nil {
		return err
	}
	if err := GuardSoftDelete(st); err != nil {
		return err
	}
	return m.store.SetFields(ctx, id, map[string]any{
		"deleted_at": models.DeletedAt{Date: ptrNow(), UserID: actor},
	})
}

// Restore clears both deleted_at fields. is_active is left as it was
// before deletion.
func (m *Manager) Restore(ctx context.Context, id primitive.ObjectID) error {
	st, err := m.store.FindState(ctx, id)
	if err != nil {
		return err
	}
	if err := GuardRestore(st); err != nil {
		return err
	}
	return m.store.SetFields(ctx, id, map[string]any{
		"deleted_at": models.DeletedAt{},
	})
}

// Purge permanently removes a record that is already soft-deleted.
func (m *Manager) Purge(ctx context.Context, id primitive.ObjectID) error {
	st, err := m.store.FindState(ctx, id)
	if err != nil {
		return err
	}
	if err := GuardPurge(st); err != nil {
		return err
	}
	return m.store.Remove(ctx, id)
}

// CheckUpdatable runs the update guard for callers that apply their own
// field patches (name/description edits).
func (m *Manager) CheckUpdatable(ctx context.Context, id primitive.ObjectID) error {
	st, err := m.store.FindState(ctx, id)
	if err != nil {
		return err
	}
	return GuardUpdate(st)
}

func ptrNow() *time.Time {
	now := time.Now().UTC()
	return &now
}
