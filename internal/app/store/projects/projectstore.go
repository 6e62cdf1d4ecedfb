// internal/app/store/projects/projectstore.go
package projectstore

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

var ErrDuplicateName = errors.New("a project with this name already exists")

type Store struct {
	*records.Store
}

func New(db *mongo.Database) *Store {
	return &Store{records.New(db, "projects")}
}

type NewProject struct {
	Name        string
	Description string
	TeamID      *primitive.ObjectID
	OwnerID     *primitive.ObjectID
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *Store) Create(ctx context.Context, in NewProject) (models.Project, error) {
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		NameCI:      text.Fold(in.Name),
		Description: in.Description,
		TeamID:      in.TeamID,
		OwnerID:     in.OwnerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.Collection().InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Project{}, ErrDuplicateName
		}
		return models.Project{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	err := s.Collection().FindOne(ctx, query.And(query.Eq("_id", id))).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Project{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, onlyActive bool) ([]models.Project, error) {
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

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, description string, teamID, ownerID *primitive.ObjectID, start, end *time.Time) error {
	fields := map[string]any{
		"description": description,
		"team_id":     teamID,
		"owner_id":    ownerID,
		"start_date":  start,
		"end_date":    end,
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
