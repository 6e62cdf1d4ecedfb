// internal/app/system/status/status.go
package status

// Lifecycle states shared across all entity types. Active/Inactive track
// the operational switch (is_active); SoftDeleted means deleted_at.date is
// set; Purged is terminal (the record no longer exists).
const (
	Active      = "active"
	Inactive    = "inactive"
	SoftDeleted = "soft_deleted"
	Purged      = "purged"
)
