// internal/app/store/queries/taskviews/taskviews.go
package taskviews

import (
	"context"

	"github.com/taskhub/taskhub/internal/app/store/queries/taskgroupviews"
	"github.com/taskhub/taskhub/internal/app/system/compose"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AssigneeView is a composed user on a task.
type AssigneeView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskView is one display-ready task: the embedded child merged with its
// resolved group, labels, and assignees.
type TaskView struct {
	ID        string                       `json:"id"`
	Name      string                       `json:"name"`
	Detail    string                       `json:"detail"`
	Group     *taskgroupviews.GroupView    `json:"group"`
	Labels    []taskgroupviews.LabelView   `json:"labels"`
	Assignees []AssigneeView               `json:"assignees"`
	StartDate string                       `json:"start_date"` // date-only; "" when unset
	DueDate   string                       `json:"due_date"`   // date-only; "" when unset
	IsActive  bool                         `json:"is_active"`
	CreatedAt string                       `json:"created_at"`
	UpdatedAt string                       `json:"updated_at"`
}

type taskDoc struct {
	models.TaskItem `bson:",inline"`
	Assignees       []models.User `bson:"assignees"`
}

type listDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProjectID primitive.ObjectID `bson:"project_id"`
	Tasks     []taskDoc          `bson:"tasks"`
}

// ListByProject composes a project's tasks: the task_lists root is
// flattened so each task can be joined to its active assignees, then
// regrouped; group and label references resolve against the project's
// task-group root, with dangling ones surfacing as null/missing.
func ListByProject(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID, includeInactive bool) ([]TaskView, error) {
	assigneeJoin := compose.JoinSpec{
		From: "users", LocalField: "tasks.assignee_ids", ForeignField: "_id",
		As: "tasks.assignees", ActiveOnly: true,
	}

	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"project_id": projectID}}},
		compose.Flatten("tasks"),
	}
	if includeInactive {
		pipe = append(pipe, bson.D{{Key: "$match", Value: bson.M{"tasks.deleted_at.date": nil}}})
	} else {
		pipe = append(pipe, compose.KeepActive("tasks"))
	}
	pipe = append(pipe, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "tasks.created_at", Value: -1}, {Key: "tasks.child_id", Value: -1},
	}}})
	pipe = append(pipe, assigneeJoin.Stages()...)
	pipe = append(pipe, compose.Regroup("tasks", "project_id", "created_at", "updated_at"))

	cur, err := db.Collection("task_lists").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []listDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		// No root, or every task filtered out.
		return []TaskView{}, nil
	}

	groups, err := taskgroupviews.GetByProject(ctx, db, projectID, taskgroupviews.Filter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	groupByID := make(map[string]taskgroupviews.GroupView, len(groups.Groups))
	for _, g := range groups.Groups {
		groupByID[g.ID] = g
	}
	labelByID := make(map[string]taskgroupviews.LabelView, len(groups.Labels))
	for _, l := range groups.Labels {
		labelByID[l.ID] = l
	}

	out := make([]TaskView, 0, len(docs[0].Tasks))
	for _, t := range docs[0].Tasks {
		out = append(out, toView(t, groupByID, labelByID))
	}
	return out, nil
}

// GetTask composes a single task by project and child id. Soft-deleted
// tasks are not found.
func GetTask(ctx context.Context, db *mongo.Database, projectID, childID primitive.ObjectID) (TaskView, error) {
	views, err := ListByProject(ctx, db, projectID, true)
	if err != nil {
		return TaskView{}, err
	}
	for _, v := range views {
		if v.ID == childID.Hex() {
			return v, nil
		}
	}
	return TaskView{}, lifecycle.ErrNotFound
}

func toView(t taskDoc, groupByID map[string]taskgroupviews.GroupView, labelByID map[string]taskgroupviews.LabelView) TaskView {
	var group *taskgroupviews.GroupView
	if t.GroupID != nil {
		if g, ok := groupByID[t.GroupID.Hex()]; ok {
			group = &g
		}
	}
	labels := make([]taskgroupviews.LabelView, 0, len(t.LabelIDs))
	for _, id := range t.LabelIDs {
		if l, ok := labelByID[id.Hex()]; ok {
			labels = append(labels, l)
		}
	}
	assignees := make([]AssigneeView, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		assignees = append(assignees, AssigneeView{ID: a.ID.Hex(), Name: a.Name, Email: a.Email})
	}
	return TaskView{
		ID:        t.ChildID.Hex(),
		Name:      t.TaskItem.Name,
		Detail:    t.Detail,
		Group:     group,
		Labels:    labels,
		Assignees: assignees,
		StartDate: compose.FormatDatePtr(t.StartDate),
		DueDate:   compose.FormatDatePtr(t.DueDate),
		IsActive:  t.TaskItem.IsActive,
		CreatedAt: compose.FormatDateTime(t.TaskItem.CreatedAt),
		UpdatedAt: compose.FormatDateTimePtr(t.TaskItem.UpdatedAt),
	}
}
