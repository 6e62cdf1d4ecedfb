// internal/app/store/records/children.go
package records

import (
	"context"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChildSet addresses the embedded child array of an aggregate root
// (task-group groups/labels, task-list tasks). Binding a root id yields a
// lifecycle.Adapter at child granularity, so the same guard table applies
// to embedded items. Parent existence is a precondition: a missing root
// surfaces as ErrNotFound before any child match is attempted.
type ChildSet struct {
	c    *mongo.Collection
	path string // array field, e.g. "groups"
}

// NewChildSet binds an array path on a root collection.
func NewChildSet(c *mongo.Collection, path string) *ChildSet {
	return &ChildSet{c: c, path: path}
}

// Bind fixes the root document, producing a child-granularity adapter.
func (cs *ChildSet) Bind(rootID primitive.ObjectID) *BoundChildren {
	return &BoundChildren{cs: cs, rootID: rootID}
}

// BoundChildren is the lifecycle.Adapter over one root's child array.
type BoundChildren struct {
	cs     *ChildSet
	rootID primitive.ObjectID
}

// Lifecycle returns a manager enforcing the guard table per child.
func (b *BoundChildren) Lifecycle() *lifecycle.Manager {
	return lifecycle.NewManager(b)
}

type childLifecycle struct {
	ChildID   primitive.ObjectID `bson:"child_id"`
	IsActive  bool               `bson:"is_active"`
	DeletedAt struct {
		Date *time.Time `bson:"date"`
	} `bson:"deleted_at"`
}

// FindState loads the root and scans for the child. Root missing and
// child missing are both ErrNotFound; the caller cannot tell them apart
// and does not need to.
func (b *BoundChildren) FindState(ctx context.Context, childID primitive.ObjectID) (lifecycle.State, error) {
	raw, err := b.cs.c.FindOne(ctx, bson.M{"_id": b.rootID},
		options.FindOne().SetProjection(bson.M{b.cs.path: 1})).Raw()
	if err == mongo.ErrNoDocuments {
		return lifecycle.State{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return lifecycle.State{}, err
	}
	var children []childLifecycle
	if v := raw.Lookup(b.cs.path); v.Validate() == nil {
		if err := v.Unmarshal(&children); err != nil {
			return lifecycle.State{}, err
		}
	}
	for _, child := range children {
		if child.ChildID == childID {
			return lifecycle.State{IsActive: child.IsActive, DeletedAt: child.DeletedAt.Date}, nil
		}
	}
	return lifecycle.State{}, lifecycle.ErrNotFound
}

// SetFields applies a positional $set on the matched child, stamping both
// the child's and the root's updated_at.
func (b *BoundChildren) SetFields(ctx context.Context, childID primitive.ObjectID, fields map[string]any) error {
	now := time.Now().UTC()
	set := bson.M{
		"updated_at":                 now,
		b.cs.path + ".$.updated_at": now,
	}
	for k, v := range fields {
		set[b.cs.path+".$."+k] = v
	}
	res, err := b.cs.c.UpdateOne(ctx,
		bson.M{"_id": b.rootID, b.cs.path + ".child_id": childID},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

// Remove pulls the child out of the array. The child is part of the
// filter so a root whose array no longer holds it does not match; the
// unconditional updated_at stamp would otherwise mask the miss.
func (b *BoundChildren) Remove(ctx context.Context, childID primitive.ObjectID) error {
	res, err := b.cs.c.UpdateOne(ctx,
		bson.M{"_id": b.rootID, b.cs.path + ".child_id": childID},
		bson.M{
			"$pull": bson.M{b.cs.path: bson.M{"child_id": childID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}
