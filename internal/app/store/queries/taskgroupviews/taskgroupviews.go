// internal/app/store/queries/taskgroupviews/taskgroupviews.go
package taskgroupviews

import (
	"context"

	"github.com/taskhub/taskhub/internal/app/system/compose"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GroupView is a display-ready group child.
type GroupView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// LabelView is a display-ready label child.
type LabelView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TaskGroupView is the composed task-group root for one project. Only
// non-deleted children appear; IncludeInactive widens the filter to
// switched-off children (the default view hides them).
type TaskGroupView struct {
	ProjectID string      `json:"project_id"`
	Groups    []GroupView `json:"groups"`
	Labels    []LabelView `json:"labels"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// Filter controls child visibility.
type Filter struct {
	IncludeInactive bool
}

// GetByProject composes the task-group view for one project. A project
// that never had a child yields an empty view rather than an error.
func GetByProject(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID, f Filter) (TaskGroupView, error) {
	var root models.TaskGroup
	err := db.Collection("task_groups").FindOne(ctx, bson.M{"project_id": projectID}).Decode(&root)
	if err == mongo.ErrNoDocuments {
		return TaskGroupView{
			ProjectID: projectID.Hex(),
			Groups:    []GroupView{},
			Labels:    []LabelView{},
		}, nil
	}
	if err != nil {
		return TaskGroupView{}, err
	}
	return toView(root, f), nil
}

// GetGroup returns one composed group child by project and child id.
func GetGroup(ctx context.Context, db *mongo.Database, projectID, childID primitive.ObjectID) (GroupView, error) {
	view, err := GetByProject(ctx, db, projectID, Filter{IncludeInactive: true})
	if err != nil {
		return GroupView{}, err
	}
	for _, g := range view.Groups {
		if g.ID == childID.Hex() {
			return g, nil
		}
	}
	return GroupView{}, lifecycle.ErrNotFound
}

func toView(root models.TaskGroup, f Filter) TaskGroupView {
	groups := make([]GroupView, 0, len(root.Groups))
	for _, g := range root.Groups {
		if !visible(g.IsActive, g.DeletedAt, f) {
			continue
		}
		groups = append(groups, GroupView{
			ID:          g.ChildID.Hex(),
			Name:        g.Name,
			Description: g.Description,
			IsActive:    g.IsActive,
			CreatedAt:   compose.FormatDateTime(g.CreatedAt),
			UpdatedAt:   compose.FormatDateTimePtr(g.UpdatedAt),
		})
	}
	labels := make([]LabelView, 0, len(root.Labels))
	for _, l := range root.Labels {
		if !visible(l.IsActive, l.DeletedAt, f) {
			continue
		}
		labels = append(labels, LabelView{
			ID:        l.ChildID.Hex(),
			Name:      l.Name,
			Color:     l.Color,
			IsActive:  l.IsActive,
			CreatedAt: compose.FormatDateTime(l.CreatedAt),
			UpdatedAt: compose.FormatDateTimePtr(l.UpdatedAt),
		})
	}
	return TaskGroupView{
		ProjectID: root.ProjectID.Hex(),
		Groups:    groups,
		Labels:    labels,
		CreatedAt: compose.FormatDateTime(root.CreatedAt),
		UpdatedAt: compose.FormatDateTimePtr(root.UpdatedAt),
	}
}

// visible: soft-deleted children never appear; inactive ones only when
// requested.
func visible(isActive bool, deleted models.DeletedAt, f Filter) bool {
	if deleted.IsDeleted() {
		return false
	}
	return isActive || f.IncludeInactive
}
