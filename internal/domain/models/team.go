// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a working group of users. Leader, manager, and creator are
// singular references; employees is the member list.
type Team struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"name_ci"`
	Description string               `bson:"description" json:"description"`
	LeaderID    *primitive.ObjectID  `bson:"leader_id,omitempty" json:"leader_id,omitempty"`
	ManagerID   *primitive.ObjectID  `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	CreatedBy   *primitive.ObjectID  `bson:"created_by,omitempty" json:"created_by,omitempty"`
	EmployeeIDs []primitive.ObjectID `bson:"employee_ids" json:"employee_ids"`

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}
