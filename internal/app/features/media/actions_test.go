package media

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/indexes"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/taskhub/taskhub/internal/testutil"
)

func newRouter(t *testing.T, fx *testutil.Fixtures, dir string) http.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager("", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return Routes(NewHandler(fx.DB(), zap.NewNop(), dir), sm)
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

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func upload(t *testing.T, h http.Handler, filename string, content []byte) models.Media {
	t.Helper()
	rec := do(h, authed(uploadRequest(t, filename, content)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var m models.Media
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &m); err != nil {
		t.Fatalf("decode media record: %v", err)
	}
	return m
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	dir := t.TempDir()
	h := newRouter(t, fx, dir)

	content := []byte("report body")
	m := upload(t, h, "report.txt", content)
	if m.StorageKey == "" {
		t.Fatal("expected a storage key")
	}
	if m.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), m.Size)
	}

	rec := do(h, httptest.NewRequest(http.MethodGet, "/"+m.ID.Hex()+"/content", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !bytes.Equal(body, content) {
		t.Errorf("downloaded bytes differ: %q", body)
	}
}

func TestUpload_DuplicateNameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	h := newRouter(t, fx, t.TempDir())

	upload(t, h, "report.txt", []byte("first"))

	rec := do(h, authed(uploadRequest(t, "REPORT.txt", []byte("second"))))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpload_RequiresSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newRouter(t, fx, t.TempDir())

	rec := do(h, uploadRequest(t, "report.txt", []byte("x")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
}

func TestDownload_SoftDeletedHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	h := newRouter(t, fx, t.TempDir())

	m := upload(t, h, "report.txt", []byte("report body"))
	fx.SoftDelete(ctx, "media", m.ID)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/"+m.ID.Hex()+"/content", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted media content, got %d", rec.Code)
	}

	// Metadata stays readable.
	rec = do(h, httptest.NewRequest(http.MethodGet, "/"+m.ID.Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for deleted media metadata, got %d", rec.Code)
	}
}

func TestPurge_RemovesBytes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	dir := t.TempDir()
	h := newRouter(t, fx, dir)

	m := upload(t, h, "report.txt", []byte("report body"))
	path := filepath.Join(dir, m.StorageKey)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected stored file at %s: %v", path, err)
	}

	// Purge requires a prior soft-delete, and the bytes must survive the
	// rejected attempt.
	rec := do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+m.ID.Hex()+"/purge", nil)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("purge of live record: expected 409, got %d", rec.Code)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("bytes were removed by a rejected purge")
	}

	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+m.ID.Hex(), nil))); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec = do(h, authed(testutil.JSONRequest(t, http.MethodDelete, "/"+m.ID.Hex()+"/purge", nil))); rec.Code != http.StatusOK {
		t.Fatalf("purge: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected stored bytes to be removed after purge")
	}
	rec = do(h, httptest.NewRequest(http.MethodGet, "/"+m.ID.Hex(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after purge, got %d", rec.Code)
	}
}

func TestRename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	h := newRouter(t, fx, t.TempDir())

	m := upload(t, h, "report.txt", []byte("report body"))

	rec := do(h, authed(testutil.JSONRequest(t, http.MethodPut, "/"+m.ID.Hex(), map[string]string{"name": "q3-report.txt"})))
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.Media
	if err := db.Collection("media").FindOne(ctx, map[string]any{"_id": m.ID}).Decode(&got); err != nil {
		t.Fatalf("reload media: %v", err)
	}
	if got.Name != "q3-report.txt" {
		t.Errorf("expected renamed record, got %q", got.Name)
	}
	// The storage key is stable across renames.
	if got.StorageKey != m.StorageKey {
		t.Errorf("storage key changed on rename: %q -> %q", m.StorageKey, got.StorageKey)
	}
}
