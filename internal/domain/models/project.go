// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is owned by a user and worked on by a team. Its task groups,
// labels, and tasks live in the task_groups / task_lists aggregate roots
// keyed by project id.
type Project struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	NameCI      string              `bson:"name_ci" json:"name_ci"`
	Description string              `bson:"description" json:"description"`
	TeamID      *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	OwnerID     *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	StartDate   *time.Time          `bson:"start_date" json:"start_date"` // date-only
	EndDate     *time.Time          `bson:"end_date" json:"end_date"`     // date-only

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}
