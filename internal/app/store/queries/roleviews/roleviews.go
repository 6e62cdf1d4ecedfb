// internal/app/store/queries/roleviews/roleviews.go
package roleviews

import (
	"context"
	"sort"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/compose"
	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/app/system/query"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GrantView is one expanded access-control entry: the joined feature
// (single or nil) and the joined active permissions.
type GrantView struct {
	Feature     *ItemView  `json:"feature"`
	Permissions []ItemView `json:"permissions"`
}

// ItemView is a composed feature or permission.
type ItemView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// RoleView is the display-ready composed role.
type RoleView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	AccessControl []GrantView `json:"access_control"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
}

type grantDoc struct {
	FeatureID     primitive.ObjectID   `bson:"feature_id"`
	PermissionIDs []primitive.ObjectID `bson:"permission_id"`
	Feature       *models.Feature      `bson:"feature"`
	Permissions   []models.Permission  `bson:"permissions"`
}

// roleDoc spells out the root fields instead of inlining models.Role:
// the joined access_control shape replaces the raw one.
type roleDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	IsActive      bool               `bson:"is_active"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     *time.Time         `bson:"updated_at"`
	AccessControl []grantDoc         `bson:"access_control"`
}

// pipeline flattens access_control so each entry can be joined per
// element, looks up its feature (single) and permissions (the array
// local field matches any element), then regroups by role id.
func pipeline(match bson.M) mongo.Pipeline {
	featureJoin := compose.JoinSpec{
		From: "features", LocalField: "access_control.feature_id", ForeignField: "_id",
		As: "access_control.feature", ActiveOnly: true, Single: true,
	}
	permissionJoin := compose.JoinSpec{
		From: "permissions", LocalField: "access_control.permission_id", ForeignField: "_id",
		As: "access_control.permissions", ActiveOnly: true,
	}

	pipe := mongo.Pipeline{bson.D{{Key: "$match", Value: match}}}
	pipe = append(pipe, compose.Flatten("access_control"))
	pipe = append(pipe, featureJoin.Stages()...)
	pipe = append(pipe, permissionJoin.Stages()...)
	pipe = append(pipe, compose.Regroup("access_control",
		"name", "name_ci", "description", "is_active",
		"created_at", "updated_at", "deleted_at"))
	pipe = append(pipe, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "created_at", Value: -1}, {Key: "_id", Value: -1},
	}}})
	return pipe
}

func run(ctx context.Context, db *mongo.Database, match bson.M) ([]roleDoc, error) {
	cur, err := db.Collection("roles").Aggregate(ctx, pipeline(match))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []roleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ListRoles composes every matching role, newest first. Roles whose
// access_control is empty drop out of the unwind, so they are re-added
// from the raw documents with empty grant lists.
func ListRoles(ctx context.Context, db *mongo.Database, onlyActive bool) ([]RoleView, error) {
	match := query.And(query.Alive())
	if onlyActive {
		match = query.Active()
	}

	docs, err := run(ctx, db, match)
	if err != nil {
		return nil, err
	}
	seen := make(map[primitive.ObjectID]struct{}, len(docs))
	for _, d := range docs {
		seen[d.ID] = struct{}{}
	}

	cur, err := db.Collection("roles").Find(ctx, match)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raw []models.Role
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}

	for _, r := range raw {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		docs = append(docs, roleDoc{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			IsActive:    r.IsActive,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	// Sort on the raw timestamps; the formatted strings drop sub-second
	// precision and would reorder roles created within the same second.
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID.Hex() > docs[j].ID.Hex()
	})

	out := make([]RoleView, 0, len(docs))
	for _, d := range docs {
		out = append(out, toView(d))
	}
	return out, nil
}

// GetRole composes a single role. Roles whose access_control is empty
// drop out of the unwind, so they fall back to the raw document with an
// empty grant list.
func GetRole(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (RoleView, error) {
	docs, err := run(ctx, db, query.And(query.Eq("_id", id)))
	if err != nil {
		return RoleView{}, err
	}
	if len(docs) > 0 {
		return toView(docs[0]), nil
	}

	var raw models.Role
	err = db.Collection("roles").FindOne(ctx, query.And(query.Eq("_id", id))).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return RoleView{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return RoleView{}, err
	}
	return toView(roleDoc{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		IsActive:    raw.IsActive,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}), nil
}

func toView(d roleDoc) RoleView {
	grants := make([]GrantView, 0, len(d.AccessControl))
	for _, g := range d.AccessControl {
		perms := make([]ItemView, 0, len(g.Permissions))
		for _, p := range g.Permissions {
			perms = append(perms, ItemView{
				ID:          p.ID.Hex(),
				Name:        p.Name,
				Description: p.Description,
				IsActive:    p.IsActive,
				CreatedAt:   compose.FormatDateTime(p.CreatedAt),
				UpdatedAt:   compose.FormatDateTimePtr(p.UpdatedAt),
			})
		}
		grants = append(grants, GrantView{Feature: featureItem(g.Feature), Permissions: perms})
	}
	return RoleView{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		AccessControl: grants,
		IsActive:      d.IsActive,
		CreatedAt:     compose.FormatDateTime(d.CreatedAt),
		UpdatedAt:     compose.FormatDateTimePtr(d.UpdatedAt),
	}
}

func featureItem(f *models.Feature) *ItemView {
	if f == nil {
		return nil
	}
	return &ItemView{
		ID:          f.ID.Hex(),
		Name:        f.Name,
		Description: f.Description,
		IsActive:    f.IsActive,
		CreatedAt:   compose.FormatDateTime(f.CreatedAt),
		UpdatedAt:   compose.FormatDateTimePtr(f.UpdatedAt),
	}
}
