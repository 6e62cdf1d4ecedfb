// internal/domain/models/lifecycle.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeletedAt marks a soft-deleted record. Date == nil means the record has
// never been soft-deleted (or has been restored). UserID is best-effort:
// it is set when the deleting request carries a session actor and left nil
// otherwise.
type DeletedAt struct {
	Date   *time.Time          `bson:"date" json:"date"`
	UserID *primitive.ObjectID `bson:"user_id" json:"user_id"`
}

// IsDeleted reports whether the record is currently soft-deleted.
func (d DeletedAt) IsDeleted() bool {
	return d.Date != nil
}
