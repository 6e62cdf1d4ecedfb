// internal/app/store/records/records.go
//
// Package records is the shared plumbing under every entity store: a
// collection handle plus the lifecycle adapter (FindState/SetFields/
// Remove) the generic lifecycle manager drives. Entity stores embed
// *records.Store and add their typed reads and creates on top.
package records

import (
	"context"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// lifecycleFields is the minimal decode target for guard checks.
type lifecycleFields struct {
	IsActive  bool `bson:"is_active"`
	DeletedAt struct {
		Date *time.Time `bson:"date"`
	} `bson:"deleted_at"`
}

// NewestFirst is the default listing sort: created_at descending with _id
// as tiebreaker.
func NewestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
}

// Store wraps one collection.
type Store struct {
	c *mongo.Collection
}

// New binds a store to db.Collection(name).
func New(db *mongo.Database, name string) *Store {
	return &Store{c: db.Collection(name)}
}

// Collection exposes the raw handle for typed reads and aggregations.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

// Lifecycle returns a manager enforcing the guard table against this
// collection.
func (s *Store) Lifecycle() *lifecycle.Manager {
	return lifecycle.NewManager(s)
}

// FindState implements lifecycle.Adapter.
func (s *Store) FindState(ctx context.Context, id primitive.ObjectID) (lifecycle.State, error) {
	var f lifecycleFields
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return lifecycle.State{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return lifecycle.State{}, err
	}
	return lifecycle.State{IsActive: f.IsActive, DeletedAt: f.DeletedAt.Date}, nil
}

// SetFields implements lifecycle.Adapter: a flat $set stamping updated_at.
func (s *Store) SetFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

// Remove implements lifecycle.Adapter. The purge guard has already run;
// this is the irreversible step.
func (s *Store) Remove(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}
