// internal/domain/models/taskgroup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupItem is an embedded child of a TaskGroup root: one column/bucket
// (e.g. "Backlog") a project's tasks can be grouped under. Children carry
// their own lifecycle fields, scoped to the parent document.
type GroupItem struct {
	ChildID     primitive.ObjectID `bson:"child_id" json:"child_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}

// LabelItem is an embedded child of a TaskGroup root: a colored label
// tasks can reference.
type LabelItem struct {
	ChildID primitive.ObjectID `bson:"child_id" json:"child_id"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"name_ci"`
	Color   string             `bson:"color" json:"color"`

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}

// TaskGroup is the aggregate root holding one project's groups and labels
// as embedded arrays. The root itself is created lazily on the first child
// insert and addressed by project id; child mutations address the root by
// id plus the child id.
type TaskGroup struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Groups    []GroupItem        `bson:"groups" json:"groups"`
	Labels    []LabelItem        `bson:"labels" json:"labels"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
}
