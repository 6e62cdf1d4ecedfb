package tasks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhub/taskhub/internal/app/store/queries/taskgroupviews"
	"github.com/taskhub/taskhub/internal/app/store/queries/taskviews"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/testutil"
)

func newRouter(t *testing.T, fx *testutil.Fixtures) http.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager("", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	r := chi.NewRouter()
	Register(r, NewHandler(fx.DB(), zap.NewNop()), sm)
	return r
}

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

func TestGroupChildLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	project := fx.CreateProject(ctx, "Apollo", nil, nil)
	h := newRouter(t, fx)
	base := "/" + project.ID.Hex() + "/groups"

	// The root document is created lazily on the first child insert.
	rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, base, map[string]string{
		"name":        "Backlog",
		"description": "Unscheduled work",
	})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ChildID primitive.ObjectID `json:"child_id"`
	}
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &created); err != nil {
		t.Fatalf("decode created group: %v", err)
	}
	child := base + "/" + created.ChildID.Hex()

	// Toggle at child granularity.
	rec = do(h, authed(testutil.JSONRequest(t, http.MethodPatch, child+"/status", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := testutil.DecodeEnvelope(t, rec).Message; msg != "group is now inactive" {
		t.Errorf("unexpected message %q", msg)
	}

	// Soft-delete hides it from listings; a second delete conflicts.
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, child, nil))); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, child, nil))); rec.Code != http.StatusConflict {
		t.Fatalf("double delete: expected 409, got %d", rec.Code)
	}
	rec = do(h, httptest.NewRequest(http.MethodGet, base+"?include_inactive=true", nil))
	var groups []taskgroupviews.GroupView
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected deleted group to be hidden, got %+v", groups)
	}

	// Restore, then purge for good.
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodPost, child+"/restore", nil))); rec.Code != http.StatusOK {
		t.Fatalf("restore: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, child, nil))); rec.Code != http.StatusOK {
		t.Fatalf("delete before purge: expected 200, got %d", rec.Code)
	}
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, child+"/purge", nil))); rec.Code != http.StatusOK {
		t.Fatalf("purge: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodPost, child+"/restore", nil))); rec.Code != http.StatusNotFound {
		t.Fatalf("restore after purge: expected 404, got %d", rec.Code)
	}
}

func TestCreateGroup_DuplicateScopedToProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	first := fx.CreateProject(ctx, "Apollo", nil, nil)
	second := fx.CreateProject(ctx, "Gemini", nil, nil)
	h := newRouter(t, fx)

	body := map[string]string{"name": "Backlog"}
	if rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, "/"+first.ID.Hex()+"/groups", body))); rec.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rec.Code)
	}
	if rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, "/"+first.ID.Hex()+"/groups", body))); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate in same project: expected 409, got %d", rec.Code)
	}
	// The same name is fine in a different project.
	if rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, "/"+second.ID.Hex()+"/groups", body))); rec.Code != http.StatusCreated {
		t.Fatalf("same name, other project: expected 201, got %d", rec.Code)
	}
}

func TestTaskComposition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	project := fx.CreateProject(ctx, "Apollo", nil, nil)
	assignee := fx.CreateUser(ctx, "Ann Chen", "ann@test.com", nil, nil, nil)
	retired := fx.CreateUser(ctx, "Gone Person", "gone@test.com", nil, nil, nil)
	if _, err := db.Collection("users").UpdateByID(ctx, retired.ID,
		map[string]any{"$set": map[string]any{"is_active": false}}); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	h := newRouter(t, fx)
	prefix := "/" + project.ID.Hex()

	rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, prefix+"/groups", map[string]string{"name": "Backlog"})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d", rec.Code)
	}
	var group struct {
		ChildID primitive.ObjectID `json:"child_id"`
	}
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &group); err != nil {
		t.Fatalf("decode group: %v", err)
	}

	rec = do(h, authed(testutil.JSONRequest(t, http.MethodPost, prefix+"/labels", map[string]string{"name": "urgent", "color": "#ff0000"})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create label: expected 201, got %d", rec.Code)
	}
	var label struct {
		ChildID primitive.ObjectID `json:"child_id"`
	}
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &label); err != nil {
		t.Fatalf("decode label: %v", err)
	}

	rec = do(h, authed(testutil.JSONRequest(t, http.MethodPost, prefix+"/tasks", map[string]any{
		"name":         "Design review",
		"detail":       "Walk through the v2 mocks",
		"group_id":     group.ChildID.Hex(),
		"label_ids":    []string{label.ChildID.Hex()},
		"assignee_ids": []string{assignee.ID.Hex(), retired.ID.Hex()},
		"start_date":   "2026-03-01",
		"due_date":     "2026-03-15",
	})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var task struct {
		ChildID primitive.ObjectID `json:"child_id"`
	}
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}

	rec = do(h, httptest.NewRequest(http.MethodGet, prefix+"/tasks/"+task.ChildID.Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get task: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view taskviews.TaskView
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &view); err != nil {
		t.Fatalf("decode task view: %v", err)
	}
	if view.Group == nil || view.Group.Name != "Backlog" {
		t.Errorf("expected composed group Backlog, got %+v", view.Group)
	}
	if len(view.Labels) != 1 || view.Labels[0].Name != "urgent" {
		t.Errorf("expected composed label urgent, got %+v", view.Labels)
	}
	// Inactive assignees drop out of the join.
	if len(view.Assignees) != 1 || view.Assignees[0].Name != "Ann Chen" {
		t.Errorf("expected only the active assignee, got %+v", view.Assignees)
	}
	if view.StartDate != "2026-03-01" || view.DueDate != "2026-03-15" {
		t.Errorf("expected date-only formatting, got start=%q due=%q", view.StartDate, view.DueDate)
	}
}

func TestListTasks_InactiveFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	project := fx.CreateProject(ctx, "Apollo", nil, nil)
	h := newRouter(t, fx)
	prefix := "/" + project.ID.Hex()

	createTask := func(name string) string {
		rec := do(h, authed(testutil.JSONRequest(t, http.MethodPost, prefix+"/tasks", map[string]any{"name": name})))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create task %q: expected 201, got %d: %s", name, rec.Code, rec.Body.String())
		}
		var task struct {
			ChildID primitive.ObjectID `json:"child_id"`
		}
		if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &task); err != nil {
			t.Fatalf("decode task: %v", err)
		}
		return task.ChildID.Hex()
	}

	createTask("Active task")
	pausedID := createTask("Paused task")
	deletedID := createTask("Deleted task")

	if rec := do(h, authed(testutil.JSONRequest(t, http.MethodPatch, prefix+"/tasks/"+pausedID+"/status", nil))); rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", rec.Code)
	}
	if rec := do(h, authed(testutil.JSONRequest(t, http.MethodDelete, prefix+"/tasks/"+deletedID, nil))); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	list := func(target string) []taskviews.TaskView {
		rec := do(h, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("list %s: expected 200, got %d", target, rec.Code)
		}
		var out []taskviews.TaskView
		if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &out); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return out
	}

	views := list(prefix + "/tasks")
	if len(views) != 1 || views[0].Name != "Active task" {
		t.Fatalf("default list: expected only the active task, got %+v", views)
	}

	views = list(prefix + "/tasks?include_inactive=true")
	if len(views) != 2 {
		t.Fatalf("widened list: expected 2 tasks, got %d", len(views))
	}
	for _, v := range views {
		if v.Name == "Deleted task" {
			t.Error("soft-deleted task leaked into the widened list")
		}
	}
}
