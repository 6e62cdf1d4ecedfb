// internal/domain/models/feature.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feature is an application area (e.g. "projects", "reports") that roles
// grant permissions against.
type Feature struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}
