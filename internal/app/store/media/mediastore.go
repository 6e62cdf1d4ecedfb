// internal/app/store/media/mediastore.go
package mediastore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
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

var ErrDuplicateName = errors.New("a media record with this name already exists")

type Store struct {
	*records.Store
}

func New(db *mongo.Database) *Store {
	return &Store{records.New(db, "media")}
}

// NewMedia carries upload metadata; the byte stream itself is handled by
// the file-storage collaborator under the returned StorageKey.
type NewMedia struct {
	Name        string // original filename
	ContentType string
	Size        int64
	OwnerID     *primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, in NewMedia) (models.Media, error) {
	m := models.Media{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		NameCI:      text.Fold(in.Name),
		StorageKey:  uuid.NewString(),
		ContentType: in.ContentType,
		Size:        in.Size,
		OwnerID:     in.OwnerID,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.Collection().InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Media{}, ErrDuplicateName
		}
		return models.Media{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Media, error) {
	var m models.Media
	err := s.Collection().FindOne(ctx, query.And(query.Eq("_id", id))).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Media{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.Media{}, err
	}
	return m, nil
}

// ListByOwner returns an owner's non-deleted media, newest first. A nil
// owner lists unowned records.
func (s *Store) ListByOwner(ctx context.Context, ownerID *primitive.ObjectID) ([]models.Media, error) {
	filter := query.And(query.Eq("owner_id", ownerID), query.Alive())
	cur, err := s.Collection().Find(ctx, filter,
		options.Find().SetSort(records.NewestFirst()))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Media
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, onlyActive bool) ([]models.Media, error) {
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

	var out []models.Media
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename updates the display name only; the storage key never changes.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	err := s.SetFields(ctx, id, map[string]any{
		"name":    name,
		"name_ci": text.Fold(name),
	})
	if wafflemongo.IsDup(err) {
		return ErrDuplicateName
	}
	return err
}
