package departments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/indexes"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/taskhub/taskhub/internal/testutil"
)

func newRouter(t *testing.T, db *testutil.Fixtures) http.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager("", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return Routes(NewHandler(db.DB(), zap.NewNop()), sm)
}

// authed injects a signed-in actor the way LoadSessionActor would.
func authed(r *http.Request) *http.Request {
	return auth.WithTestActor(r, &auth.Actor{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Actor",
		Email: "actor@test.com",
	})
}

func do(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestCreate_RequiresSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newRouter(t, fx)

	rec := do(h, testutil.JSONRequest(t, http.MethodPost, "/", map[string]string{"name": "Engineering"}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	env := testutil.DecodeEnvelope(t, rec)
	if env.Error == nil {
		t.Error("expected error payload in envelope")
	}
}

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newRouter(t, fx)

	rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, "/", map[string]string{
		"name":        "Engineering",
		"description": "Builds the product",
	})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	if env.Message != "department created" {
		t.Errorf("unexpected message %q", env.Message)
	}
	var created models.Department
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created department: %v", err)
	}
	if created.Name != "Engineering" || !created.IsActive {
		t.Errorf("unexpected created record: %+v", created)
	}

	rec = do(h, httptest.NewRequest(http.MethodGet, "/"+created.ID.Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
}

func TestGet_UnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newRouter(t, fx)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/"+primitive.NewObjectID().Hex(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = do(h, httptest.NewRequest(http.MethodGet, "/not-a-hex-id", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed id, got %d", rec.Code)
	}
}

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	fx.CreateDepartment(ctx, "Engineering")
	h := newRouter(t, fx)

	rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, "/", map[string]string{"name": "ENGINEERING"})))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestList_ActiveFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	fx.CreateDepartment(ctx, "Engineering")
	inactive := fx.CreateDepartment(ctx, "Dormant")
	if _, err := db.Collection("departments").UpdateByID(ctx, inactive.ID,
		map[string]any{"$set": map[string]any{"is_active": false}}); err != nil {
		t.Fatalf("deactivate fixture: %v", err)
	}
	deleted := fx.CreateDepartment(ctx, "Closed")
	fx.SoftDelete(ctx, "departments", deleted.ID)

	h := newRouter(t, fx)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	var list []models.Department
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	// Soft-deleted records never appear; inactive still do.
	if len(list) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(list))
	}

	rec = do(h, httptest.NewRequest(http.MethodGet, "/?active=true", nil))
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &list); err != nil {
		t.Fatalf("decode active list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Engineering" {
		t.Fatalf("expected only Engineering in active list, got %+v", list)
	}
}

func TestToggleStatus_BothWays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	dept := fx.CreateDepartment(ctx, "Engineering")
	h := newRouter(t, fx)

	rec := do(h, authed(testutil.JSONRequest(t, http.MethodPatch, "/"+dept.ID.Hex()+"/status", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := testutil.DecodeEnvelope(t, rec).Message; msg != "department is now inactive" {
		t.Errorf("unexpected message %q", msg)
	}

	rec = do(h, authed(testutil.JSONRequest(t, http.MethodPatch, "/"+dept.ID.Hex()+"/status", nil)))
	if msg := testutil.DecodeEnvelope(t, rec).Message; msg != "department is now active" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestSoftDeleteTwice_Conflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	dept := fx.CreateDepartment(ctx, "Engineering")
	h := newRouter(t, fx)

	rec := do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+dept.ID.Hex(), nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete: expected 200, got %d", rec.Code)
	}

	rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+dept.ID.Hex(), nil)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second delete: expected 409, got %d", rec.Code)
	}
}

func TestSoftDelete_RecordsActor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	dept := fx.CreateDepartment(ctx, "Engineering")
	h := newRouter(t, fx)

	actorID := primitive.NewObjectID()
	req := testutil.JSONRequest(t, http.MethodDelete, "/"+dept.ID.Hex(), nil)
	req = auth.WithTestActor(req, &auth.Actor{ID: actorID.Hex(), Name: "Deleter"})
	if rec := do(h, req); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	got, err := func() (models.Department, error) {
		var d models.Department
		err := db.Collection("departments").FindOne(ctx, map[string]any{"_id": dept.ID}).Decode(&d)
		return d, err
	}()
	if err != nil {
		t.Fatalf("reload department: %v", err)
	}
	if got.DeletedAt.Date == nil {
		t.Fatal("expected deleted_at.date to be stamped")
	}
	if got.DeletedAt.UserID == nil || *got.DeletedAt.UserID != actorID {
		t.Errorf("expected deleted_at.user_id %s, got %v", actorID.Hex(), got.DeletedAt.UserID)
	}
}

func TestPurgeBeforeSoftDelete_Conflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	dept := fx.CreateDepartment(ctx, "Engineering")
	h := newRouter(t, fx)

	rec := do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+dept.ID.Hex()+"/purge", nil)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when purging a live record, got %d", rec.Code)
	}

	// The record must survive a rejected purge.
	n, err := db.Collection("departments").CountDocuments(ctx, map[string]any{"_id": dept.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Error("record was removed by a rejected purge")
	}
}

func TestSoftDeleteRestorePurge_FullPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	dept := fx.CreateDepartment(ctx, "Engineering")
	h := newRouter(t, fx)

	// Updates on a soft-deleted record are rejected.
	fx.SoftDelete(ctx, "departments", dept.ID)
	rec := do(h, authed(testutil.JSONRequest(t, http.MethodPut, "/"+dept.ID.Hex(), map[string]string{"name": "Renamed"})))
	if rec.Code != http.StatusConflict {
		t.Fatalf("update of deleted record: expected 409, got %d", rec.Code)
	}

	// Restore puts it back; updates work again.
	rec = do(h, authed(testutil.JSONRequest(t, http.MethodPost, "/"+dept.ID.Hex()+"/restore", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(h, authed(testutil.JSONRequest(t, http.MethodPut, "/"+dept.ID.Hex(), map[string]string{"name": "Renamed"})))
	if rec.Code != http.StatusOK {
		t.Fatalf("update after restore: expected 200, got %d", rec.Code)
	}

	// Restoring a live record is a conflict.
	rec = do(h, authed(testutil.JSONRequest(t, http.MethodPost, "/"+dept.ID.Hex()+"/restore", nil)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("restore of live record: expected 409, got %d", rec.Code)
	}

	// Delete then purge removes the record for good.
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+dept.ID.Hex(), nil))); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+dept.ID.Hex()+"/purge", nil))); rec.Code != http.StatusOK {
		t.Fatalf("purge: expected 200, got %d", rec.Code)
	}
	n, err := db.Collection("departments").CountDocuments(ctx, map[string]any{"_id": dept.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Error("expected record to be gone after purge")
	}
}
