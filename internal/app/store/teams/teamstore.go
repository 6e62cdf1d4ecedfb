// internal/app/store/teams/teamstore.go
package teamstore

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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateName = errors.New("a team with this name already exists")

type Store struct {
	*records.Store
}

func New(db *mongo.Database) *Store {
	return &Store{records.New(db, "teams")}
}

// NewTeam carries the create input; creator is the session actor.
type NewTeam struct {
	Name        string
	Description string
	LeaderID    *primitive.ObjectID
	ManagerID   *primitive.ObjectID
	CreatedBy   *primitive.ObjectID
	EmployeeIDs []primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, in NewTeam) (models.Team, error) {
	if in.EmployeeIDs == nil {
		in.EmployeeIDs = []primitive.ObjectID{}
	}
	t := models.Team{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		NameCI:      text.Fold(in.Name),
		Description: in.Description,
		LeaderID:    in.LeaderID,
		ManagerID:   in.ManagerID,
		CreatedBy:   in.CreatedBy,
		EmployeeIDs: in.EmployeeIDs,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.Collection().InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateName
		}
		return models.Team{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var t models.Team
	err := s.Collection().FindOne(ctx, query.And(query.Eq("_id", id))).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.Team{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.Team{}, err
	}
	return t, nil
}

func (s *Store) List(ctx context.Context, onlyActive bool) ([]models.Team, error) {
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

	var out []models.Team
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, description string, leaderID, managerID *primitive.ObjectID) error {
	fields := map[string]any{
		"description": description,
		"leader_id":   leaderID,
		"manager_id":  managerID,
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

// AddEmployee adds a member reference; adding twice is a no-op.
func (s *Store) AddEmployee(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.Collection().UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"employee_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

// RemoveEmployee drops a member reference.
func (s *Store) RemoveEmployee(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.Collection().UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"employee_ids": userID},
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
