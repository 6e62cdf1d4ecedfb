package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServerResponseNullError(t *testing.T) {
	env := ServerResponse(http.StatusCreated, "department created", true)
	if env.Error != nil {
		t.Error("success envelope must carry a null error")
	}
	if env.Status != http.StatusCreated || env.Data != true {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestServerErrorStringifies(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		want    string
	}{
		{"string", "bad id", "bad id"},
		{"error", errors.New("boom"), "boom"},
		{"struct", map[string]string{"field": "name"}, `{"field":"name"}`},
	}
	for _, tc := range cases {
		env := ServerError(http.StatusConflict, "conflict", tc.payload, nil)
		if env.Error == nil || *env.Error != tc.want {
			t.Errorf("%s: got %v, want %q", tc.name, env.Error, tc.want)
		}
		if env.Data != nil {
			t.Errorf("%s: data must default to null", tc.name)
		}
	}
}

func TestWriteMirrorsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusNotFound, "record not found", "no role under that id")

	if rec.Code != http.StatusNotFound {
		t.Errorf("HTTP code %d, want 404", rec.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != http.StatusNotFound || env.Error == nil {
		t.Errorf("envelope %+v", env)
	}
	if env.Data != nil {
		t.Error("failure data must be null")
	}
}
