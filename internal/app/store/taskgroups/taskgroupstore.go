// internal/app/store/taskgroups/taskgroupstore.go
package taskgroupstore

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

var (
	ErrDuplicateGroupName = errors.New("a group with this name already exists in the project")
	ErrDuplicateLabelName = errors.New("a label with this name already exists in the project")
)

// Store manages the task_groups aggregate roots: one document per
// project, holding the project's group and label children as embedded
// arrays. The root is created lazily on the first child insert.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("task_groups")}
}

func (s *Store) Collection() *mongo.Collection {
	return s.c
}

// GetByProject returns the root for a project, or lifecycle.ErrNotFound
// if no child has ever been created.
func (s *Store) GetByProject(ctx context.Context, projectID primitive.ObjectID) (models.TaskGroup, error) {
	var root models.TaskGroup
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID}).Decode(&root)
	if err == mongo.ErrNoDocuments {
		return models.TaskGroup{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.TaskGroup{}, err
	}
	return root, nil
}

// ensureRoot upserts the root document for a project and returns its id.
func (s *Store) ensureRoot(ctx context.Context, projectID primitive.ObjectID) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"project_id": projectID},
		bson.M{"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"project_id": projectID,
			"groups":     []models.GroupItem{},
			"labels":     []models.LabelItem{},
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

// AddGroup appends a group child under the project's root. Name
// uniqueness is scoped to the parent document and checked case-folded
// against non-deleted siblings.
func (s *Store) AddGroup(ctx context.Context, projectID primitive.ObjectID, name, description string) (models.GroupItem, error) {
	rootID, err := s.ensureRoot(ctx, projectID)
	if err != nil {
		return models.GroupItem{}, err
	}
	item := models.GroupItem{
		ChildID:     primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": rootID,
			"groups": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"name_ci":         item.NameCI,
				"deleted_at.date": nil,
			}}},
		},
		bson.M{
			"$push": bson.M{"groups": item},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.GroupItem{}, err
	}
	if res.MatchedCount == 0 {
		return models.GroupItem{}, ErrDuplicateGroupName
	}
	return item, nil
}

// AddLabel appends a label child under the project's root.
func (s *Store) AddLabel(ctx context.Context, projectID primitive.ObjectID, name, color string) (models.LabelItem, error) {
	rootID, err := s.ensureRoot(ctx, projectID)
	if err != nil {
		return models.LabelItem{}, err
	}
	item := models.LabelItem{
		ChildID:   primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Color:     color,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": rootID,
			"labels": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"name_ci":         item.NameCI,
				"deleted_at.date": nil,
			}}},
		},
		bson.M{
			"$push": bson.M{"labels": item},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.LabelItem{}, err
	}
	if res.MatchedCount == 0 {
		return models.LabelItem{}, ErrDuplicateLabelName
	}
	return item, nil
}

// Groups returns the child-granularity lifecycle adapter for a root's
// group array.
func (s *Store) Groups(rootID primitive.ObjectID) *records.BoundChildren {
	return records.NewChildSet(s.c, "groups").Bind(rootID)
}

// Labels returns the child-granularity lifecycle adapter for a root's
// label array.
func (s *Store) Labels(rootID primitive.ObjectID) *records.BoundChildren {
	return records.NewChildSet(s.c, "labels").Bind(rootID)
}

// UpdateGroupInfo mutates a group child's name/description. The caller
// has already run the update guard at child granularity.
func (s *Store) UpdateGroupInfo(ctx context.Context, rootID, childID primitive.ObjectID, name, description string) error {
	fields := map[string]any{"description": description}
	if name != "" {
		fields["name"] = name
		fields["name_ci"] = text.Fold(name)
	}
	return s.Groups(rootID).SetFields(ctx, childID, fields)
}

// UpdateLabelInfo mutates a label child's name/color.
func (s *Store) UpdateLabelInfo(ctx context.Context, rootID, childID primitive.ObjectID, name, color string) error {
	fields := map[string]any{"color": color}
	if name != "" {
		fields["name"] = name
		fields["name_ci"] = text.Fold(name)
	}
	return s.Labels(rootID).SetFields(ctx, childID, fields)
}
