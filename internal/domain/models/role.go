// internal/domain/models/role.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessControl links one feature with the permissions a role holds on it.
// Only references are stored; the composed role view joins the actual
// feature and permission documents.
type AccessControl struct {
	FeatureID     primitive.ObjectID   `bson:"feature_id" json:"feature_id"`
	PermissionIDs []primitive.ObjectID `bson:"permission_id" json:"permission_id"`
}

// Role is a named bundle of feature/permission grants assigned to users.
type Role struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	NameCI        string             `bson:"name_ci" json:"name_ci"`
	Description   string             `bson:"description" json:"description"`
	AccessControl []AccessControl    `bson:"access_control" json:"access_control"`

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}
