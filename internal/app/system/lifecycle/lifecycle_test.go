package lifecycle

import (
	"testing"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/status"
)

func deletedState() State {
	d := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return State{IsActive: true, DeletedAt: &d}
}

func TestStatus(t *testing.T) {
	if got := (State{IsActive: true}).Status(); got != status.Active {
		t.Errorf("active state: got %q", got)
	}
	if got := (State{IsActive: false}).Status(); got != status.Inactive {
		t.Errorf("inactive state: got %q", got)
	}
	if got := deletedState().Status(); got != status.SoftDeleted {
		t.Errorf("deleted state: got %q", got)
	}
}

// The guard table from the transition design: every transition checked
// against every reachable state.
func TestGuardTable(t *testing.T) {
	active := State{IsActive: true}
	inactive := State{IsActive: false}
	deleted := deletedState()

	cases := []struct {
		name    string
		guard   func(State) error
		state   State
		wantErr error
	}{
		{"update/active", GuardUpdate, active, nil},
		{"update/inactive", GuardUpdate, inactive, nil},
		{"update/deleted", GuardUpdate, deleted, ErrConflict},

		{"toggle/active", GuardToggleStatus, active, nil},
		{"toggle/inactive", GuardToggleStatus, inactive, nil},
		{"toggle/deleted", GuardToggleStatus, deleted, ErrConflict},

		{"softdelete/active", GuardSoftDelete, active, nil},
		{"softdelete/inactive", GuardSoftDelete, inactive, nil},
		{"softdelete/deleted", GuardSoftDelete, deleted, ErrConflict},

		{"restore/active", GuardRestore, active, ErrConflict},
		{"restore/inactive", GuardRestore, inactive, ErrConflict},
		{"restore/deleted", GuardRestore, deleted, nil},

		{"purge/active", GuardPurge, active, ErrConflict},
		{"purge/inactive", GuardPurge, inactive, ErrConflict},
		{"purge/deleted", GuardPurge, deleted, nil},
	}

	for _, tc := range cases {
		if err := tc.guard(tc.state); err != tc.wantErr {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

// Purging a record that was never soft-deleted must fail before the store
// is touched.
func TestPurgeRequiresPriorSoftDelete(t *testing.T) {
	if err := GuardPurge(State{IsActive: true}); err != ErrConflict {
		t.Fatalf("purge of live record: got %v, want ErrConflict", err)
	}
	if err := GuardPurge(deletedState()); err != nil {
		t.Fatalf("purge of soft-deleted record: got %v, want nil", err)
	}
}
