package users

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/indexes"
	"github.com/taskhub/taskhub/internal/testutil"
)

func newRouter(t *testing.T, fx *testutil.Fixtures) http.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager("", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return Routes(NewHandler(fx.DB(), zap.NewNop()), sm)
}

func do(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "Ann Chen", "ann@test.com", nil, nil, nil)
	h := newRouter(t, fx)

	rec := do(h, testutil.JSONRequest(t, http.MethodPost, "/", map[string]string{
		"name": "ANN CHEN", "email": "other@test.com", "secret": "opensesame1",
	}))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := testutil.DecodeEnvelope(t, rec).Message; msg != "user name already in use" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "Ann Chen", "ann@test.com", nil, nil, nil)
	h := newRouter(t, fx)

	rec := do(h, testutil.JSONRequest(t, http.MethodPost, "/", map[string]string{
		"name": "Someone Else", "email": "ann@test.com", "secret": "opensesame1",
	}))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
}
