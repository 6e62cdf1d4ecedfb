// internal/app/store/queries/teamviews/teamviews.go
package teamviews

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

// MemberView is a composed user reference inside a team: the user plus
// their singularized role.
type MemberView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      *RoleView `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt string    `json:"created_at"`
}

// RoleView is the singularized role on a team member.
type RoleView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamView is the display-ready composed team.
type TeamView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Leader      *MemberView  `json:"leader"`
	Manager     *MemberView  `json:"manager"`
	Creator     *MemberView  `json:"creator"`
	Employees   []MemberView `json:"employees"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

type memberDoc struct {
	models.User `bson:",inline"`
	Role        *models.Role `bson:"role"`
}

type teamDoc struct {
	models.Team `bson:",inline"`
	Leader      *memberDoc  `bson:"leader"`
	Manager     *memberDoc  `bson:"manager"`
	Creator     *memberDoc  `bson:"creator"`
	Employees   []memberDoc `bson:"employees"`
}

// joins composes the team: three singular user lookups (each recursively
// composed with their role) and the employee list. Leader/manager/creator
// come first so the employee join never shadows their attached fields.
func joins() []compose.JoinSpec {
	roleJoin := compose.JoinSpec{
		From: "roles", LocalField: "role_id", ForeignField: "_id",
		As: "role", ActiveOnly: true, Single: true,
	}
	member := func(local, as string, single bool) compose.JoinSpec {
		return compose.JoinSpec{
			From: "users", LocalField: local, ForeignField: "_id", As: as,
			ActiveOnly: true, Single: single,
			Nested: []compose.JoinSpec{roleJoin},
		}
	}
	return []compose.JoinSpec{
		member("leader_id", "leader", true),
		member("manager_id", "manager", true),
		member("created_by", "creator", true),
		member("employee_ids", "employees", false),
	}
}

func run(ctx context.Context, db *mongo.Database, match bson.M) ([]TeamView, error) {
	pipe := compose.Pipeline(match, nil, joins()...)
	cur, err := db.Collection("teams").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []teamDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]TeamView, 0, len(docs))
	for _, d := range docs {
		out = append(out, toView(d))
	}
	return out, nil
}

// GetTeam composes a single team by id.
func GetTeam(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (TeamView, error) {
	views, err := run(ctx, db, query.And(query.Eq("_id", id)))
	if err != nil {
		return TeamView{}, err
	}
	if len(views) == 0 {
		return TeamView{}, lifecycle.ErrNotFound
	}
	return views[0], nil
}

// ListTeams composes all non-deleted teams, newest first.
func ListTeams(ctx context.Context, db *mongo.Database, onlyActive bool) ([]TeamView, error) {
	match := query.And(query.Alive())
	if onlyActive {
		match = query.Active()
	}
	return run(ctx, db, match)
}

func toView(d teamDoc) TeamView {
	employees := make([]MemberView, 0, len(d.Employees))
	for _, e := range d.Employees {
		employees = append(employees, memberView(e))
	}
	return TeamView{
		ID:          d.Team.ID.Hex(),
		Name:        d.Team.Name,
		Description: d.Team.Description,
		Leader:      memberPtr(d.Leader),
		Manager:     memberPtr(d.Manager),
		Creator:     memberPtr(d.Creator),
		Employees:   employees,
		IsActive:    d.Team.IsActive,
		CreatedAt:   compose.FormatDateTime(d.Team.CreatedAt),
		UpdatedAt:   compose.FormatDateTimePtr(d.Team.UpdatedAt),
	}
}

func memberPtr(m *memberDoc) *MemberView {
	if m == nil {
		return nil
	}
	v := memberView(*m)
	return &v
}

func memberView(m memberDoc) MemberView {
	var role *RoleView
	if m.Role != nil {
		role = &RoleView{ID: m.Role.ID.Hex(), Name: m.Role.Name}
	}
	return MemberView{
		ID:        m.User.ID.Hex(),
		Name:      m.User.Name,
		Email:     m.Email,
		Role:      role,
		IsActive:  m.User.IsActive,
		CreatedAt: compose.FormatDateTime(m.User.CreatedAt),
	}
}
