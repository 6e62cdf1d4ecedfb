// internal/app/store/roles/rolestore.go
package rolestore

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

var ErrDuplicateName = errors.New("a role with this name already exists")

type Store struct {
	*records.Store
}

func New(db *mongo.Database) *Store {
	return &Store{records.New(db, "roles")}
}

func (s *Store) Create(ctx context.Context, name, description string, access []models.AccessControl) (models.Role, error) {
	if access == nil {
		access = []models.AccessControl{}
	}
	r := models.Role{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		Description:   description,
		AccessControl: access,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.Collection().InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Role{}, ErrDuplicateName
		}
		return models.Role{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	var r models.Role
	err := s.Collection().FindOne(ctx, query.And(query.Eq("_id", id))).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Role{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.Role{}, err
	}
	return r, nil
}

func (s *Store) List(ctx context.Context, onlyActive bool) ([]models.Role, error) {
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

	var out []models.Role
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

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

// SetAccessControl replaces the full grant list. Dangling feature or
// permission references are tolerated; the composed view resolves them as
// missing at read time.
func (s *Store) SetAccessControl(ctx context.Context, id primitive.ObjectID, access []models.AccessControl) error {
	if access == nil {
		access = []models.AccessControl{}
	}
	return s.SetFields(ctx, id, map[string]any{"access_control": access})
}
