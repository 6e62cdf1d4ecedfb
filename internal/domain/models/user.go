// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that can sign in and be assigned to teams,
// projects, and tasks.
//
// NOTE:
//   - Role, department, and tag are stored as references; the composed
//     user view joins and singularizes them.
//   - SecretHash is a bcrypt hash managed by the credentials collaborator
//     and is never included in composed views.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	NameCI       string              `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	SecretHash   string              `bson:"secret_hash" json:"-"`
	RoleID       *primitive.ObjectID `bson:"role_id,omitempty" json:"role_id,omitempty"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty" json:"department_id,omitempty"`
	TagID        *primitive.ObjectID `bson:"tag_id,omitempty" json:"tag_id,omitempty"`
	BirthDate    *time.Time          `bson:"birth_date" json:"birth_date"` // date-only; nil renders as ""
	AvatarKey    string              `bson:"avatar_key,omitempty" json:"avatar_key,omitempty"`

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}
