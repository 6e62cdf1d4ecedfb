package roleviews

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/taskhub/taskhub/internal/testutil"
)

func TestGetRole_ComposesGrants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	feature := fx.CreateFeature(ctx, "Projects")
	read := fx.CreatePermission(ctx, "read")
	write := fx.CreatePermission(ctx, "write")
	role := fx.CreateRole(ctx, "Manager", []models.AccessControl{{
		FeatureID:     feature.ID,
		PermissionIDs: []primitive.ObjectID{read.ID, write.ID},
	}})

	view, err := GetRole(ctx, db, role.ID)
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if view.Name != "Manager" {
		t.Errorf("expected name Manager, got %q", view.Name)
	}
	if len(view.AccessControl) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(view.AccessControl))
	}
	grant := view.AccessControl[0]
	if grant.Feature == nil || grant.Feature.Name != "Projects" {
		t.Errorf("expected joined feature Projects, got %+v", grant.Feature)
	}
	if len(grant.Permissions) != 2 {
		t.Errorf("expected 2 joined permissions, got %d", len(grant.Permissions))
	}
	if view.CreatedAt == "" {
		t.Error("expected formatted created_at")
	}
}

func TestGetRole_ExcludesInactiveReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	feature := fx.CreateFeature(ctx, "Projects")
	read := fx.CreatePermission(ctx, "read")
	paused := fx.CreatePermission(ctx, "admin")
	if _, err := db.Collection("permissions").UpdateByID(ctx, paused.ID,
		map[string]any{"$set": map[string]any{"is_active": false}}); err != nil {
		t.Fatalf("deactivate permission: %v", err)
	}
	gone := fx.CreatePermission(ctx, "export")
	fx.SoftDelete(ctx, "permissions", gone.ID)

	role := fx.CreateRole(ctx, "Manager", []models.AccessControl{{
		FeatureID:     feature.ID,
		PermissionIDs: []primitive.ObjectID{read.ID, paused.ID, gone.ID},
	}})

	view, err := GetRole(ctx, db, role.ID)
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	perms := view.AccessControl[0].Permissions
	if len(perms) != 1 || perms[0].Name != "read" {
		t.Fatalf("expected only the active permission, got %+v", perms)
	}
}

func TestGetRole_InactiveFeatureBecomesNull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	feature := fx.CreateFeature(ctx, "Projects")
	if _, err := db.Collection("features").UpdateByID(ctx, feature.ID,
		map[string]any{"$set": map[string]any{"is_active": false}}); err != nil {
		t.Fatalf("deactivate feature: %v", err)
	}
	read := fx.CreatePermission(ctx, "read")
	role := fx.CreateRole(ctx, "Manager", []models.AccessControl{{
		FeatureID:     feature.ID,
		PermissionIDs: []primitive.ObjectID{read.ID},
	}})

	view, err := GetRole(ctx, db, role.ID)
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	grant := view.AccessControl[0]
	if grant.Feature != nil {
		t.Errorf("expected inactive feature to join as null, got %+v", grant.Feature)
	}
	if len(grant.Permissions) != 1 {
		t.Errorf("expected permissions to still join, got %d", len(grant.Permissions))
	}
}

func TestGetRole_EmptyGrantsStillComposes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	role := fx.CreateRole(ctx, "Viewer", nil)

	view, err := GetRole(ctx, db, role.ID)
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if view.Name != "Viewer" {
		t.Errorf("expected name Viewer, got %q", view.Name)
	}
	if len(view.AccessControl) != 0 {
		t.Errorf("expected empty grants, got %+v", view.AccessControl)
	}
}

func TestGetRole_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := GetRole(ctx, db, primitive.NewObjectID())
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRoles_SubSecondOrderingAcrossMerge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	feature := fx.CreateFeature(ctx, "Projects")
	read := fx.CreatePermission(ctx, "read")

	// Both roles land in the same second, so their formatted timestamps
	// are equal and only the raw ones can order them. The grantless role
	// arrives through the fallback merge, the other through the pipeline.
	base := time.Now().UTC().Truncate(time.Second)
	older := models.Role{
		ID:     primitive.NewObjectID(),
		Name:   "Manager",
		NameCI: "manager",
		AccessControl: []models.AccessControl{{
			FeatureID:     feature.ID,
			PermissionIDs: []primitive.ObjectID{read.ID},
		}},
		IsActive:  true,
		CreatedAt: base.Add(100 * time.Millisecond),
	}
	newer := models.Role{
		ID:        primitive.NewObjectID(),
		Name:      "Viewer",
		NameCI:    "viewer",
		IsActive:  true,
		CreatedAt: base.Add(900 * time.Millisecond),
	}
	for _, r := range []models.Role{older, newer} {
		if _, err := db.Collection("roles").InsertOne(ctx, r); err != nil {
			t.Fatalf("insert role: %v", err)
		}
	}

	views, err := ListRoles(ctx, db, false)
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(views))
	}
	if views[0].Name != "Viewer" || views[1].Name != "Manager" {
		t.Errorf("expected newest-first across the merge, got %q then %q", views[0].Name, views[1].Name)
	}
}

func TestListRoles_MixedGrantsAndFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	feature := fx.CreateFeature(ctx, "Projects")
	read := fx.CreatePermission(ctx, "read")
	fx.CreateRole(ctx, "Manager", []models.AccessControl{{
		FeatureID:     feature.ID,
		PermissionIDs: []primitive.ObjectID{read.ID},
	}})
	fx.CreateRole(ctx, "Viewer", nil)
	inactive := fx.CreateRole(ctx, "Paused", nil)
	if _, err := db.Collection("roles").UpdateByID(ctx, inactive.ID,
		map[string]any{"$set": map[string]any{"is_active": false}}); err != nil {
		t.Fatalf("deactivate role: %v", err)
	}
	deleted := fx.CreateRole(ctx, "Removed", nil)
	fx.SoftDelete(ctx, "roles", deleted.ID)

	views, err := ListRoles(ctx, db, false)
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	// Manager, Viewer, Paused; soft-deleted roles never appear. Roles
	// without grants must not be dropped by the flatten stage.
	if len(views) != 3 {
		t.Fatalf("expected 3 roles, got %d", len(views))
	}

	active, err := ListRoles(ctx, db, true)
	if err != nil {
		t.Fatalf("ListRoles active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active roles, got %d", len(active))
	}
	for _, v := range active {
		if v.Name == "Paused" || v.Name == "Removed" {
			t.Errorf("unexpected role %q in active list", v.Name)
		}
	}
}
