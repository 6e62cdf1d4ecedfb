// internal/app/store/queries/userviews/userviews.go
package userviews

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

// RefView is the singularized form of a one-to-one join (role,
// department, tag): always a single object or nil, never an array.
type RefView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// UserView is the display-ready composed user.
type UserView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       *RefView `json:"role"`
	Department *RefView `json:"department"`
	Tag        *RefView `json:"tag"`
	BirthDate  string   `json:"birth_date"` // date-only; "" when unset
	AvatarKey  string   `json:"avatar_key"`
	IsActive   bool     `json:"is_active"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// userDoc is the aggregation decode target: the raw user plus the three
// singularized joins.
type userDoc struct {
	models.User `bson:",inline"`
	Role        *models.Role       `bson:"role"`
	Department  *models.Department `bson:"department"`
	Tag         *models.UserTag    `bson:"tag"`
}

// joins is the user composition: three one-to-one lookups, each filtered
// to currently-valid rows and reduced to first-or-null.
func joins() []compose.JoinSpec {
	return []compose.JoinSpec{
		{From: "roles", LocalField: "role_id", ForeignField: "_id", As: "role", ActiveOnly: true, Single: true},
		{From: "departments", LocalField: "department_id", ForeignField: "_id", As: "department", ActiveOnly: true, Single: true},
		{From: "user_tags", LocalField: "tag_id", ForeignField: "_id", As: "tag", ActiveOnly: true, Single: true},
	}
}

func run(ctx context.Context, db *mongo.Database, match bson.M) ([]UserView, error) {
	pipe := compose.Pipeline(match, nil, joins()...)
	cur, err := db.Collection("users").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(docs))
	for _, d := range docs {
		out = append(out, toView(d))
	}
	return out, nil
}

// GetUser composes a single user by id.
func GetUser(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (UserView, error) {
	views, err := run(ctx, db, query.And(query.Eq("_id", id)))
	if err != nil {
		return UserView{}, err
	}
	if len(views) == 0 {
		return UserView{}, lifecycle.ErrNotFound
	}
	return views[0], nil
}

// ListUsers composes all non-deleted users, newest first. onlyActive
// narrows to operationally-on users.
func ListUsers(ctx context.Context, db *mongo.Database, onlyActive bool) ([]UserView, error) {
	match := query.And(query.Alive())
	if onlyActive {
		match = query.Active()
	}
	return run(ctx, db, match)
}

func toView(d userDoc) UserView {
	return UserView{
		ID:         d.User.ID.Hex(),
		Name:       d.User.Name,
		Email:      d.Email,
		Role:       roleRef(d.Role),
		Department: departmentRef(d.Department),
		Tag:        tagRef(d.Tag),
		BirthDate:  compose.FormatDatePtr(d.BirthDate),
		AvatarKey:  d.AvatarKey,
		IsActive:   d.User.IsActive,
		CreatedAt:  compose.FormatDateTime(d.User.CreatedAt),
		UpdatedAt:  compose.FormatDateTimePtr(d.User.UpdatedAt),
	}
}

func roleRef(r *models.Role) *RefView {
	if r == nil {
		return nil
	}
	return &RefView{
		ID:          r.ID.Hex(),
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   compose.FormatDateTime(r.CreatedAt),
		UpdatedAt:   compose.FormatDateTimePtr(r.UpdatedAt),
	}
}

func departmentRef(d *models.Department) *RefView {
	if d == nil {
		return nil
	}
	return &RefView{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   compose.FormatDateTime(d.CreatedAt),
		UpdatedAt:   compose.FormatDateTimePtr(d.UpdatedAt),
	}
}

func tagRef(t *models.UserTag) *RefView {
	if t == nil {
		return nil
	}
	return &RefView{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedAt:   compose.FormatDateTime(t.CreatedAt),
		UpdatedAt:   compose.FormatDateTimePtr(t.UpdatedAt),
	}
}
