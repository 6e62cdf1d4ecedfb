package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskhub/taskhub/internal/app/system/lifecycle"
	"github.com/taskhub/taskhub/internal/app/system/status"
	"github.com/taskhub/taskhub/internal/testutil"
)

func insertRecord(t *testing.T, s *Store, ctx context.Context, active bool) primitive.ObjectID {
	t.Helper()
	id := primitive.NewObjectID()
	_, err := s.Collection().InsertOne(ctx, bson.M{
		"_id":        id,
		"name":       "record",
		"is_active":  active,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return id
}

func TestFindState_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db, "things")
	_, err := s.FindState(ctx, primitive.NewObjectID())
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_FullLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db, "things")
	id := insertRecord(t, s, ctx, true)
	mgr := s.Lifecycle()

	got, err := mgr.ToggleStatus(ctx, id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got != status.Inactive {
		t.Errorf("expected %q after first toggle, got %q", status.Inactive, got)
	}
	got, err = mgr.ToggleStatus(ctx, id)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if got != status.Active {
		t.Errorf("expected %q after second toggle, got %q", status.Active, got)
	}

	actor := primitive.NewObjectID()
	if err := mgr.SoftDelete(ctx, id, &actor); err != nil {
		t.Fatalf("soft-delete: %v", err)
	}
	st, err := s.FindState(ctx, id)
	if err != nil {
		t.Fatalf("find state: %v", err)
	}
	if st.DeletedAt == nil {
		t.Fatal("expected deletion timestamp")
	}
	if st.Status() != status.SoftDeleted {
		t.Errorf("expected status %q, got %q", status.SoftDeleted, st.Status())
	}

	// Deleted records reject toggle, update, and a second delete.
	if _, err := mgr.ToggleStatus(ctx, id); !errors.Is(err, lifecycle.ErrConflict) {
		t.Errorf("toggle of deleted record: expected ErrConflict, got %v", err)
	}
	if err := mgr.CheckUpdatable(ctx, id); !errors.Is(err, lifecycle.ErrConflict) {
		t.Errorf("update check of deleted record: expected ErrConflict, got %v", err)
	}
	if err := mgr.SoftDelete(ctx, id, nil); !errors.Is(err, lifecycle.ErrConflict) {
		t.Errorf("double delete: expected ErrConflict, got %v", err)
	}

	if err := mgr.Restore(ctx, id); err != nil {
		t.Fatalf("restore: %v", err)
	}
	st, err = s.FindState(ctx, id)
	if err != nil {
		t.Fatalf("find state after restore: %v", err)
	}
	if st.DeletedAt != nil {
		t.Error("expected deletion timestamp to be cleared")
	}
	// is_active survives the delete/restore round trip.
	if !st.IsActive {
		t.Error("expected record to come back active")
	}

	if err := mgr.Purge(ctx, id); !errors.Is(err, lifecycle.ErrConflict) {
		t.Errorf("purge of live record: expected ErrConflict, got %v", err)
	}
	if err := mgr.SoftDelete(ctx, id, nil); err != nil {
		t.Fatalf("soft-delete before purge: %v", err)
	}
	if err := mgr.Purge(ctx, id); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := s.FindState(ctx, id); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("expected ErrNotFound after purge, got %v", err)
	}
}

func TestRestore_PreservesInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db, "things")
	id := insertRecord(t, s, ctx, false)
	mgr := s.Lifecycle()

	if err := mgr.SoftDelete(ctx, id, nil); err != nil {
		t.Fatalf("soft-delete: %v", err)
	}
	if err := mgr.Restore(ctx, id); err != nil {
		t.Fatalf("restore: %v", err)
	}
	st, err := s.FindState(ctx, id)
	if err != nil {
		t.Fatalf("find state: %v", err)
	}
	if st.IsActive {
		t.Error("expected record to come back inactive, as it was before deletion")
	}
}

type childFixture struct {
	ChildID   primitive.ObjectID `bson:"child_id"`
	Name      string             `bson:"name"`
	IsActive  bool               `bson:"is_active"`
	CreatedAt time.Time          `bson:"created_at"`
}

func TestBoundChildren_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("roots")
	rootID := primitive.NewObjectID()
	first := childFixture{ChildID: primitive.NewObjectID(), Name: "first", IsActive: true, CreatedAt: time.Now().UTC()}
	second := childFixture{ChildID: primitive.NewObjectID(), Name: "second", IsActive: true, CreatedAt: time.Now().UTC()}
	if _, err := coll.InsertOne(ctx, bson.M{
		"_id":        rootID,
		"items":      []childFixture{first, second},
		"created_at": time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert root: %v", err)
	}

	bound := NewChildSet(coll, "items").Bind(rootID)
	mgr := bound.Lifecycle()

	// Child-granularity toggle only touches the matched element.
	if _, err := mgr.ToggleStatus(ctx, first.ChildID); err != nil {
		t.Fatalf("toggle child: %v", err)
	}
	st, err := bound.FindState(ctx, first.ChildID)
	if err != nil {
		t.Fatalf("find first: %v", err)
	}
	if st.IsActive {
		t.Error("expected first child to be inactive")
	}
	st, err = bound.FindState(ctx, second.ChildID)
	if err != nil {
		t.Fatalf("find second: %v", err)
	}
	if !st.IsActive {
		t.Error("expected second child to be untouched")
	}

	// Soft-delete then purge removes only the matched element.
	if err := mgr.SoftDelete(ctx, second.ChildID, nil); err != nil {
		t.Fatalf("soft-delete child: %v", err)
	}
	if err := mgr.SoftDelete(ctx, second.ChildID, nil); !errors.Is(err, lifecycle.ErrConflict) {
		t.Errorf("double delete of child: expected ErrConflict, got %v", err)
	}
	if err := mgr.Purge(ctx, second.ChildID); err != nil {
		t.Fatalf("purge child: %v", err)
	}
	if _, err := bound.FindState(ctx, second.ChildID); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("expected purged child to be gone, got %v", err)
	}
	if _, err := bound.FindState(ctx, first.ChildID); err != nil {
		t.Errorf("expected surviving child to remain, got %v", err)
	}
}

func TestBoundChildren_RemoveTwice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("roots")
	rootID := primitive.NewObjectID()
	child := childFixture{ChildID: primitive.NewObjectID(), Name: "only", IsActive: true, CreatedAt: time.Now().UTC()}
	if _, err := coll.InsertOne(ctx, bson.M{
		"_id":        rootID,
		"items":      []childFixture{child},
		"created_at": time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert root: %v", err)
	}

	bound := NewChildSet(coll, "items").Bind(rootID)
	if err := bound.Remove(ctx, child.ChildID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	var root struct {
		UpdatedAt time.Time `bson:"updated_at"`
	}
	if err := coll.FindOne(ctx, bson.M{"_id": rootID}).Decode(&root); err != nil {
		t.Fatalf("reload root: %v", err)
	}

	// A second remove of the same child races a concurrent purge. It must
	// report the miss instead of restamping the root.
	if err := bound.Remove(ctx, child.ChildID); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("second remove: expected ErrNotFound, got %v", err)
	}
	var after struct {
		UpdatedAt time.Time `bson:"updated_at"`
	}
	if err := coll.FindOne(ctx, bson.M{"_id": rootID}).Decode(&after); err != nil {
		t.Fatalf("reload root: %v", err)
	}
	if !after.UpdatedAt.Equal(root.UpdatedAt) {
		t.Error("expected a failed remove to leave updated_at unchanged")
	}
}

func TestBoundChildren_MissingRootAndChild(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("roots")

	// Missing root.
	bound := NewChildSet(coll, "items").Bind(primitive.NewObjectID())
	if _, err := bound.FindState(ctx, primitive.NewObjectID()); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("missing root: expected ErrNotFound, got %v", err)
	}

	// Root present, child missing.
	rootID := primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, bson.M{
		"_id":        rootID,
		"items":      []childFixture{},
		"created_at": time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert root: %v", err)
	}
	bound = NewChildSet(coll, "items").Bind(rootID)
	if _, err := bound.FindState(ctx, primitive.NewObjectID()); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("missing child: expected ErrNotFound, got %v", err)
	}
	if err := bound.SetFields(ctx, primitive.NewObjectID(), map[string]any{"name": "x"}); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("set on missing child: expected ErrNotFound, got %v", err)
	}
	if err := bound.Remove(ctx, primitive.NewObjectID()); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("remove of missing child: expected ErrNotFound, got %v", err)
	}
}
