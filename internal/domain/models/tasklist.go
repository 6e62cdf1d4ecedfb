// internal/domain/models/tasklist.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskItem is an embedded child of a TaskList root: one task of a project.
// Group, labels, and assignees are references resolved by the composed
// task view.
type TaskItem struct {
	ChildID     primitive.ObjectID   `bson:"child_id" json:"child_id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"name_ci"`
	Detail      string               `bson:"detail" json:"detail"`
	GroupID     *primitive.ObjectID  `bson:"group_id,omitempty" json:"group_id,omitempty"`
	LabelIDs    []primitive.ObjectID `bson:"label_ids" json:"label_ids"`
	AssigneeIDs []primitive.ObjectID `bson:"assignee_ids" json:"assignee_ids"`
	StartDate   *time.Time           `bson:"start_date" json:"start_date"` // date-only
	DueDate     *time.Time           `bson:"due_date" json:"due_date"`     // date-only

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}

// TaskList is the aggregate root holding one project's tasks as an
// embedded array, created lazily on the first task insert.
type TaskList struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Tasks     []TaskItem         `bson:"tasks" json:"tasks"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
}
