// internal/app/store/queries/projectviews/projectviews.go
package projectviews

import (
	"context"

	"github.com/taskhub/taskhub/internal/app/system/compose"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/app/system/query"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OwnerView is the singularized project owner with their role.
type OwnerView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	RoleName *string `json:"role_name"`
}

// TeamRef is the singularized team on a project.
type TeamRef struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MemberCount int      `json:"member_count"`
	MemberNames []string `json:"member_names"`
}

// ProjectView is the display-ready composed project.
type ProjectView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Team        *TeamRef   `json:"team"`
	Owner       *OwnerView `json:"owner"`
	StartDate   string     `json:"start_date"` // date-only; "" when unset
	EndDate     string     `json:"end_date"`   // date-only; "" when unset
	IsActive    bool       `json:"is_active"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

type ownerDoc struct {
	models.User `bson:",inline"`
	Role        *models.Role `bson:"role"`
}

type teamDoc struct {
	models.Team `bson:",inline"`
	Employees   []models.User `bson:"employees"`
}

type projectDoc struct {
	models.Project `bson:",inline"`
	Team           *teamDoc  `bson:"team"`
	Owner          *ownerDoc `bson:"owner"`
}

// joins: team first (with its active employees), then owner (with role).
// Declared order matters only for readability here; neither join reads
// the other's output.
func joins() []compose.JoinSpec {
	return []compose.JoinSpec{
		{
			From: "teams", LocalField: "team_id", ForeignField: "_id", As: "team",
			ActiveOnly: true, Single: true,
			Nested: []compose.JoinSpec{{
				From: "users", LocalField: "employee_ids", ForeignField: "_id",
				As: "employees", ActiveOnly: true,
			}},
		},
		{
			From: "users", LocalField: "owner_id", ForeignField: "_id", As: "owner",
			ActiveOnly: true, Single: true,
			Nested: []compose.JoinSpec{{
				From: "roles", LocalField: "role_id", ForeignField: "_id",
				As: "role", ActiveOnly: true, Single: true,
			}},
		},
	}
}

func run(ctx context.Context, db *mongo.Database, match bson.M) ([]ProjectView, error) {
	pipe := compose.Pipeline(match, nil, joins()...)
	cur, err := db.Collection("projects").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]ProjectView, 0, len(docs))
	for _, d := range docs {
		out = append(out, toView(d))
	}
	return out, nil
}

// GetProject composes a single project by id.
func GetProject(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (ProjectView, error) {
	views, err := run(ctx, db, query.And(query.Eq("_id", id)))
	if err != nil {
		return ProjectView{}, err
	}
	if len(views) == 0 {
		return ProjectView{}, lifecycle.ErrNotFound
	}
	return views[0], nil
}

// ListProjects composes all non-deleted projects, newest first.
func ListProjects(ctx context.Context, db *mongo.Database, onlyActive bool) ([]ProjectView, error) {
	match := query.And(query.Alive())
	if onlyActive {
		match = query.Active()
	}
	return run(ctx, db, match)
}

func toView(d projectDoc) ProjectView {
	return ProjectView{
		ID:          d.Project.ID.Hex(),
		Name:        d.Project.Name,
		Description: d.Project.Description,
		Team:        teamRef(d.Team),
		Owner:       ownerRef(d.Owner),
		StartDate:   compose.FormatDatePtr(d.StartDate),
		EndDate:     compose.FormatDatePtr(d.EndDate),
		IsActive:    d.Project.IsActive,
		CreatedAt:   compose.FormatDateTime(d.Project.CreatedAt),
		UpdatedAt:   compose.FormatDateTimePtr(d.Project.UpdatedAt),
	}
}

func teamRef(t *teamDoc) *TeamRef {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Employees))
	for _, e := range t.Employees {
		names = append(names, e.Name)
	}
	return &TeamRef{
		ID:          t.Team.ID.Hex(),
		Name:        t.Team.Name,
		Description: t.Team.Description,
		MemberCount: len(t.Employees),
		MemberNames: names,
	}
}

func ownerRef(o *ownerDoc) *OwnerView {
	if o == nil {
		return nil
	}
	var roleName *string
	if o.Role != nil {
		roleName = &o.Role.Name
	}
	return &OwnerView{
		ID:       o.User.ID.Hex(),
		Name:     o.User.Name,
		Email:    o.Email,
		RoleName: roleName,
	}
}
