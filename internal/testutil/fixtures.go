package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhub/taskhub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert %s fixture: %v", coll, err)
	}
}

// CreatePermission creates an active permission with the given name.
func (f *Fixtures) CreatePermission(ctx context.Context, name string) models.Permission {
	f.t.Helper()
	p := models.Permission{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "permissions", p)
	return p
}

// CreateFeature creates an active feature with the given name.
func (f *Fixtures) CreateFeature(ctx context.Context, name string) models.Feature {
	f.t.Helper()
	ft := models.Feature{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "features", ft)
	return ft
}

// CreateRole creates an active role carrying the given grants.
func (f *Fixtures) CreateRole(ctx context.Context, name string, grants []models.AccessControl) models.Role {
	f.t.Helper()
	if grants == nil {
		grants = []models.AccessControl{}
	}
	r := models.Role{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		AccessControl: grants,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	f.insert(ctx, "roles", r)
	return r
}

// CreateDepartment creates an active department with the given name.
func (f *Fixtures) CreateDepartment(ctx context.Context, name string) models.Department {
	f.t.Helper()
	d := models.Department{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "departments", d)
	return d
}

// CreateUserTag creates an active user tag with the given name.
func (f *Fixtures) CreateUserTag(ctx context.Context, name string) models.UserTag {
	f.t.Helper()
	u := models.UserTag{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "user_tags", u)
	return u
}

// CreateUser creates an active user. roleID, departmentID, and tagID may
// be nil for users with no reference assignments.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, roleID, departmentID, tagID *primitive.ObjectID) models.User {
	f.t.Helper()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		RoleID:       roleID,
		DepartmentID: departmentID,
		TagID:        tagID,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateTeam creates an active team led by leaderID with the given members.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, leaderID *primitive.ObjectID, employeeIDs []primitive.ObjectID) models.Team {
	f.t.Helper()
	if employeeIDs == nil {
		employeeIDs = []primitive.ObjectID{}
	}
	tm := models.Team{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		LeaderID:    leaderID,
		EmployeeIDs: employeeIDs,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	f.insert(ctx, "teams", tm)
	return tm
}

// CreateProject creates an active project for the given team and owner.
func (f *Fixtures) CreateProject(ctx context.Context, name string, teamID, ownerID *primitive.ObjectID) models.Project {
	f.t.Helper()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		TeamID:    teamID,
		OwnerID:   ownerID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "projects", p)
	return p
}

// SoftDelete stamps deleted_at.date on a record directly, bypassing the
// lifecycle guards. Useful for arranging purge/restore scenarios.
func (f *Fixtures) SoftDelete(ctx context.Context, coll string, id primitive.ObjectID) {
	f.t.Helper()
	now := time.Now().UTC()
	_, err := f.db.Collection(coll).UpdateByID(ctx, id, map[string]any{
		"$set": map[string]any{"deleted_at.date": now},
	})
	if err != nil {
		f.t.Fatalf("failed to soft-delete %s fixture: %v", coll, err)
	}
}
