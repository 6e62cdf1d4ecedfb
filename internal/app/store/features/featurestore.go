// internal/app/store/features/featurestore.go
package featurestore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhub/taskhub/internal/app/store/records"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/app/system/query"
	"github.com/taskhub/taskhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateName = errors.New("a feature with this name already exists")

type Store struct {
	*records.Store
}

func New(db *mongo.Database) *Store {
	return &Store{records.New(db, "features")}
}

func (s *Store) Create(ctx context.Context, name, description string) (models.Feature, error) {
	p := models.Feature{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.Collection().InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Feature{}, ErrDuplicateName
		}
		return models.Feature{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Feature, error) {
	var p models.Feature
	err := s.Collection().FindOne(ctx, query.And(query.Eq("_id", id))).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Feature{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.Feature{}, err
	}
	return p, nil
}

// List returns non-deleted features, newest first. onlyActive narrows
// to is_active == true.
func (s *Store) List(ctx context.Context, onlyActive bool) ([]models.Feature, error) {
	filter := query.And(query.Alive())
	if onlyActive {
		filter = query.Active()
	}
	cur, err := s.Collection().Find(ctx, filter,
		options.Find().SetSort(records.NewestFirst()))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Feature
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInfo mutates name/description. The caller has already run the
// update guard; this only applies the patch.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, description string) error {
	fields := map[string]any{"description": description}
	if name != "" {
		fields["name"] = name
		fields["name_ci"] = text.Fold(name)
	}
	err := s.SetFields(ctx, id, fields)
	if wafflemongo.IsDup(err) {
		return ErrDuplicateName
	}
	return err
}
