// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
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

var (
	ErrDuplicateName  = errors.New("a user with this name already exists")
	ErrDuplicateEmail = errors.New("a user with this email already exists")
)

type Store struct {
	*records.Store
}

func New(db *mongo.Database) *Store {
	return &Store{records.New(db, "users")}
}

// NewUser carries the create input. SecretHash comes from the credentials
// collaborator; references may be nil.
type NewUser struct {
	Name         string
	Email        string
	SecretHash   string
	RoleID       *primitive.ObjectID
	DepartmentID *primitive.ObjectID
	TagID        *primitive.ObjectID
	BirthDate    *time.Time
	AvatarKey    string
}

func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         in.Name,
		NameCI:       text.Fold(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		SecretHash:   in.SecretHash,
		RoleID:       in.RoleID,
		DepartmentID: in.DepartmentID,
		TagID:        in.TagID,
		BirthDate:    in.BirthDate,
		AvatarKey:    in.AvatarKey,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.Collection().InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "email") {
				return models.User{}, ErrDuplicateEmail
			}
			return models.User{}, ErrDuplicateName
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.Collection().FindOne(ctx, query.And(query.Eq("_id", id))).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail is the login lookup: the actor must be active and not
// soft-deleted.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	filter := query.And(
		query.Eq("email", strings.ToLower(strings.TrimSpace(email))),
		query.Eq("is_active", true),
		query.Alive(),
	)
	var u models.User
	err := s.Collection().FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) List(ctx context.Context, onlyActive bool) ([]models.User, error) {
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

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile mutates name and the optional references. Empty name
// leaves it unchanged; nil pointers clear the reference.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, name string, roleID, departmentID, tagID *primitive.ObjectID, birthDate *time.Time) error {
	fields := map[string]any{
		"role_id":       roleID,
		"department_id": departmentID,
		"tag_id":        tagID,
		"birth_date":    birthDate,
	}
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

// SetAvatar records the storage key of the user's avatar media.
func (s *Store) SetAvatar(ctx context.Context, id primitive.ObjectID, key string) error {
	return s.SetFields(ctx, id, map[string]any{"avatar_key": key})
}
