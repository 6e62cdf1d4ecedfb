// internal/app/store/tasklists/taskliststore.go
package taskliststore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhub/taskhub/internal/app/store/records"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateTaskName = errors.New("a task with this name already exists in the project")

// Store manages the task_lists aggregate roots: one document per project
// holding its tasks as an embedded array, created lazily on the first
// task insert.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("task_lists")}
}

func (s *Store) Collection() *mongo.Collection {
	return s.c
}

func (s *Store) GetByProject(ctx context.Context, projectID primitive.ObjectID) (models.TaskList, error) {
	var root models.TaskList
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID}).Decode(&root)
	if err == mongo.ErrNoDocuments {
		return models.TaskList{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.TaskList{}, err
	}
	return root, nil
}

func (s *Store) ensureRoot(ctx context.Context, projectID primitive.ObjectID) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"project_id": projectID},
		bson.M{"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"project_id": projectID,
			"tasks":      []models.TaskItem{},
			"created_at": now,
			"updated_at": nil,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After))

	var root struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := res.Decode(&root); err != nil {
		return primitive.NilObjectID, err
	}
	return root.ID, nil
}

// NewTask carries the task create input. References point at the
// project's group/label children and at users; dangling ones resolve as
// missing in the composed view.
type NewTask struct {
	Name        string
	Detail      string
	GroupID     *primitive.ObjectID
	LabelIDs    []primitive.ObjectID
	AssigneeIDs []primitive.ObjectID
	StartDate   *time.Time
	DueDate     *time.Time
}

// AddTask appends a task under the project's root. Task names are unique
// (case-folded) among the project's non-deleted tasks.
func (s *Store) AddTask(ctx context.Context, projectID primitive.ObjectID, in NewTask) (models.TaskItem, error) {
	rootID, err := s.ensureRoot(ctx, projectID)
	if err != nil {
		return models.TaskItem{}, err
	}
	if in.LabelIDs == nil {
		in.LabelIDs = []primitive.ObjectID{}
	}
	if in.AssigneeIDs == nil {
		in.AssigneeIDs = []primitive.ObjectID{}
	}
	item := models.TaskItem{
		ChildID:     primitive.NewObjectID(),
		Name:        in.Name,
		NameCI:      text.Fold(in.Name),
		Detail:      in.Detail,
		GroupID:     in.GroupID,
		LabelIDs:    in.LabelIDs,
		AssigneeIDs: in.AssigneeIDs,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": rootID,
			"tasks": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"name_ci":         item.NameCI,
				"deleted_at.date": nil,
			}}},
		},
		bson.M{
			"$push": bson.M{"tasks": item},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.TaskItem{}, err
	}
	if res.MatchedCount == 0 {
		return models.TaskItem{}, ErrDuplicateTaskName
	}
	return item, nil
}

// Tasks returns the child-granularity lifecycle adapter for a root's
// task array.
func (s *Store) Tasks(rootID primitive.ObjectID) *records.BoundChildren {
	return records.NewChildSet(s.c, "tasks").Bind(rootID)
}

// UpdateTaskInfo mutates a task child. The caller has already run the
// update guard at child granularity.
func (s *Store) UpdateTaskInfo(ctx context.Context, rootID, childID primitive.ObjectID, in NewTask) error {
	if in.LabelIDs == nil {
		in.LabelIDs = []primitive.ObjectID{}
	}
	if in.AssigneeIDs == nil {
		in.AssigneeIDs = []primitive.ObjectID{}
	}
	fields := map[string]any{
		"detail":       in.Detail,
		"group_id":     in.GroupID,
		"label_ids":    in.LabelIDs,
		"assignee_ids": in.AssigneeIDs,
		"start_date":   in.StartDate,
		"due_date":     in.DueDate,
	}
	if in.Name != "" {
		fields["name"] = in.Name
		fields["name_ci"] = text.Fold(in.Name)
	}
	return s.Tasks(rootID).SetFields(ctx, childID, fields)
}
